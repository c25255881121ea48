package auditor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/db/model"
)

type fakeStore struct {
	polls       []*model.Poll
	votes       map[uint64][]*model.Vote
	settlements map[uint64]*model.Settlement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		votes:       make(map[uint64][]*model.Vote),
		settlements: make(map[uint64]*model.Settlement),
	}
}

func (s *fakeStore) GetPollsAfterId(id int64, limit int) ([]*model.Poll, error) {
	res := make([]*model.Poll, 0)
	for _, poll := range s.polls {
		if poll.Id > id && len(res) < limit {
			res = append(res, poll)
		}
	}
	return res, nil
}

func (s *fakeStore) GetVotesByPollId(pollId uint64) ([]*model.Vote, error) {
	return s.votes[pollId], nil
}

func (s *fakeStore) GetSettlementByPollId(pollId uint64) (*model.Settlement, error) {
	settlement, ok := s.settlements[pollId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return settlement, nil
}

func newAuditor(store *fakeStore) *PollAuditor {
	return NewPollAuditor(&config.Config{}, store, nil)
}

func TestAuditCleanPoll(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "30", CurrentVotes: 2,
	})
	store.votes[10] = []*model.Vote{
		{PollId: 10, Voter: "0xa", AmountPaid: "10"},
		{PollId: 10, Voter: "0xb", AmountPaid: "20"},
	}

	auditor := newAuditor(store)
	hasMore, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, uint64(0), auditor.mismatchCount)
	require.Equal(t, int64(1), auditor.cursor)
}

func TestAuditDetectsPoolDrift(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "31", CurrentVotes: 2,
	})
	store.votes[10] = []*model.Vote{
		{PollId: 10, Voter: "0xa", AmountPaid: "10"},
		{PollId: 10, Voter: "0xb", AmountPaid: "20"},
	}

	auditor := newAuditor(store)
	_, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(1), auditor.mismatchCount)
}

func TestAuditDetectsVoteCountDrift(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "10", CurrentVotes: 2,
	})
	store.votes[10] = []*model.Vote{
		{PollId: 10, Voter: "0xa", AmountPaid: "10"},
	}

	auditor := newAuditor(store)
	_, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(1), auditor.mismatchCount)
}

func TestAuditSettledPollConservation(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "30000", CreatorDeposit: "2000",
		CurrentVotes: 2, Settled: true, WinningOption: 1,
	})
	store.votes[10] = []*model.Vote{
		{PollId: 10, Voter: "0xa", AmountPaid: "10000"},
		{PollId: 10, Voter: "0xb", AmountPaid: "20000"},
	}
	store.settlements[10] = &model.Settlement{
		PollId: 10, WinningOption: 1,
		TotalRewardPool: "27200", PlatformFee: "3200", CreatorFee: "1600", CreatorRefund: "0",
	}

	auditor := newAuditor(store)
	_, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(0), auditor.mismatchCount)
}

func TestAuditDetectsLostFunds(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "30000", CreatorDeposit: "2000",
		CurrentVotes: 1, Settled: true, WinningOption: 1,
	})
	store.votes[10] = []*model.Vote{
		{PollId: 10, Voter: "0xa", AmountPaid: "30000"},
	}
	store.settlements[10] = &model.Settlement{
		PollId: 10, WinningOption: 1,
		TotalRewardPool: "27200", PlatformFee: "3200", CreatorFee: "1599", CreatorRefund: "0",
	}

	auditor := newAuditor(store)
	_, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(1), auditor.mismatchCount)
}

func TestAuditDetectsMissingSettlementRow(t *testing.T) {
	store := newFakeStore()
	store.polls = append(store.polls, &model.Poll{
		Id: 1, PollId: 10, VoterPool: "0", Settled: true,
	})

	auditor := newAuditor(store)
	_, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(1), auditor.mismatchCount)
}

func TestAuditPagesThroughPolls(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= int64(BatchSize)+5; i++ {
		store.polls = append(store.polls, &model.Poll{
			Id: i, PollId: uint64(i), VoterPool: "0",
		})
	}

	auditor := newAuditor(store)
	hasMore, err := auditor.AuditBatch()
	require.NoError(t, err)
	require.True(t, hasMore)
	require.Equal(t, int64(BatchSize), auditor.cursor)

	hasMore, err = auditor.AuditBatch()
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, int64(BatchSize)+5, auditor.cursor)
}
