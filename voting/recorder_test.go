package voting

import (
	"errors"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/pricing"
	"github.com/binpoll/binpoll-settler/util"
)

var testNow = time.Unix(1_700_000_000, 0)

const (
	voterA = "0x1111111111111111111111111111111111111111"
	voterB = "0x2222222222222222222222222222222222222222"
	voterC = "0x3333333333333333333333333333333333333333"
)

// fakeStore applies the same atomic vote-acceptance semantics as the real
// persistence layer, serialized by a mutex.
type fakeStore struct {
	mtx   sync.Mutex
	polls map[uint64]*model.Poll
	votes map[uint64]map[string]*model.Vote
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		polls: make(map[uint64]*model.Poll),
		votes: make(map[uint64]map[string]*model.Vote),
	}
}

func (f *fakeStore) addPoll(pollId, maxVotes, requiredCredibility uint64, endTime int64) {
	f.polls[pollId] = &model.Poll{
		PollId:              pollId,
		Creator:             "0xc1",
		Options:             util.JoinOptions([]string{"Yes", "No"}),
		OptionCount:         2,
		BasePrice:           "100",
		MaxVotes:            maxVotes,
		CreatorDeposit:      "2000",
		VoterPool:           "0",
		RequiredCredibility: requiredCredibility,
		EndTime:             endTime,
	}
	f.votes[pollId] = make(map[string]*model.Vote)
}

func (f *fakeStore) GetPollByPollId(pollId uint64) (*model.Poll, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	poll, ok := f.polls[pollId]
	if !ok {
		return nil, errors.New("poll not found")
	}
	snapshot := *poll
	return &snapshot, nil
}

func (f *fakeStore) RecordVote(vote *model.Vote, nowUnix int64) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	poll, ok := f.polls[vote.PollId]
	if !ok {
		return errors.New("poll not found")
	}
	if nowUnix >= poll.EndTime {
		return common.ErrPollEnded
	}
	if poll.CurrentVotes >= poll.MaxVotes {
		return common.ErrPollFull
	}
	if _, voted := f.votes[vote.PollId][vote.Voter]; voted {
		return common.ErrAlreadyVoted
	}
	price, err := pricing.NextVotePrice(util.MustAmount(poll.BasePrice), poll.CurrentVotes, poll.MaxVotes)
	if err != nil {
		return err
	}
	paid := util.MustAmount(vote.AmountPaid)
	if paid.LT(price) {
		return common.ErrInsufficientPayment
	}
	f.votes[vote.PollId][vote.Voter] = vote
	poll.CurrentVotes++
	poll.VoterPool = util.MustAmount(poll.VoterPool).Add(paid).String()
	return nil
}

func (f *fakeStore) SavePoll(poll *model.Poll) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.polls[poll.PollId] = poll
	f.votes[poll.PollId] = make(map[string]*model.Vote)
	return nil
}

type fakeCredibility struct {
	scores map[string]uint64
	err    error
}

func (f *fakeCredibility) GetCredibility(voter string) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.scores[voter], nil
}

func testRecorder(store *fakeStore, credibility *fakeCredibility) *Recorder {
	if credibility == nil {
		credibility = &fakeCredibility{scores: map[string]uint64{}}
	}
	return NewRecorder(store, credibility, nil, sdkmath.NewInt(2000)).
		WithClock(func() time.Time { return testNow })
}

func TestRecordVote(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	vote, err := recorder.RecordVote(1, voterA, 0, "100")
	require.NoError(t, err)
	require.Equal(t, util.NormalizeAddress(voterA), vote.Voter)
	require.Equal(t, uint64(1), store.polls[1].CurrentVotes)
	require.Equal(t, "100", store.polls[1].VoterPool)
}

func TestRecordVote_NoDoubleVote(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	_, err := recorder.RecordVote(1, voterA, 0, "100")
	require.NoError(t, err)

	// same voter, different checksum casing of the same address
	_, err = recorder.RecordVote(1, voterA, 1, "140")
	require.ErrorIs(t, err, common.ErrAlreadyVoted)
	require.Equal(t, uint64(1), store.polls[1].CurrentVotes)
}

func TestRecordVote_CapacityEnforced(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 2, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	_, err := recorder.RecordVote(1, voterA, 0, "100")
	require.NoError(t, err)
	_, err = recorder.RecordVote(1, voterB, 0, "300")
	require.NoError(t, err)

	_, err = recorder.RecordVote(1, voterC, 0, "500")
	require.ErrorIs(t, err, common.ErrPollFull)
	require.Equal(t, uint64(2), store.polls[1].CurrentVotes)
}

func TestRecordVote_PollEnded(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 0, testNow.Unix()-60)
	recorder := testRecorder(store, nil)

	_, err := recorder.RecordVote(1, voterA, 0, "100")
	require.ErrorIs(t, err, common.ErrPollEnded)
}

func TestRecordVote_Credibility(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 50, testNow.Unix()+3600)
	credibility := &fakeCredibility{scores: map[string]uint64{
		util.NormalizeAddress(voterA): 80,
		util.NormalizeAddress(voterB): 20,
	}}
	recorder := testRecorder(store, credibility)

	_, err := recorder.RecordVote(1, voterA, 0, "100")
	require.NoError(t, err)

	_, err = recorder.RecordVote(1, voterB, 0, "140")
	require.ErrorIs(t, err, common.ErrInsufficientCredibility)
	require.Equal(t, uint64(1), store.polls[1].CurrentVotes)
}

func TestRecordVote_InvalidInput(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	_, err := recorder.RecordVote(1, "not-an-address", 0, "100")
	require.ErrorIs(t, err, common.ErrInvalidVote)

	_, err = recorder.RecordVote(1, voterA, 0, "-100")
	require.ErrorIs(t, err, common.ErrInvalidVote)
}

func TestRecordVote_ConcurrentVoters(t *testing.T) {
	store := newFakeStore()
	maxVotes := uint64(5)
	store.addPoll(1, maxVotes, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	voters := []string{
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002",
		"0x0000000000000000000000000000000000000003",
		"0x0000000000000000000000000000000000000004",
		"0x0000000000000000000000000000000000000005",
		"0x0000000000000000000000000000000000000006",
		"0x0000000000000000000000000000000000000007",
		"0x0000000000000000000000000000000000000008",
	}
	var wg sync.WaitGroup
	for _, voter := range voters {
		wg.Add(1)
		go func(voter string) {
			defer wg.Done()
			// pay the worst-case price so only capacity can reject
			_, _ = recorder.RecordVote(1, voter, 0, "500")
		}(voter)
	}
	wg.Wait()

	require.Equal(t, maxVotes, store.polls[1].CurrentVotes)
	require.Len(t, store.votes[1], int(maxVotes))
}

func TestQuoteNextVote_MatchesChargedPrice(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 10, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	for i := 0; i < 3; i++ {
		quote, err := recorder.QuoteNextVote(1)
		require.NoError(t, err)

		// paying exactly the quoted amount is always accepted
		voter := util.NormalizeAddress(voterA)[:41] + string(rune('0'+i))
		vote, err := recorder.RecordVote(1, voter, 0, quote.String())
		require.NoError(t, err)
		require.Equal(t, quote.String(), vote.AmountPaid)
	}
}

func TestQuoteNextVote_Rejections(t *testing.T) {
	store := newFakeStore()
	store.addPoll(1, 1, 0, testNow.Unix()+3600)
	recorder := testRecorder(store, nil)

	_, err := recorder.RecordVote(1, voterA, 0, "100")
	require.NoError(t, err)
	_, err = recorder.QuoteNextVote(1)
	require.ErrorIs(t, err, common.ErrPollFull)

	store.addPoll(2, 10, 0, testNow.Unix()-60)
	_, err = recorder.QuoteNextVote(2)
	require.ErrorIs(t, err, common.ErrPollEnded)
}

func TestCreatePoll(t *testing.T) {
	store := newFakeStore()
	recorder := testRecorder(store, nil)

	poll, err := recorder.CreatePoll(voterA, []string{"Yes", "No"}, "100", "2000", 10, 0, testNow.Unix()+3600)
	require.NoError(t, err)
	require.Equal(t, uint32(2), poll.OptionCount)
	require.False(t, poll.OnChain)

	_, err = recorder.CreatePoll(voterA, []string{"Yes", "No"}, "100", "1999", 10, 0, testNow.Unix()+3600)
	require.ErrorIs(t, err, common.ErrInsufficientDeposit)

	_, err = recorder.CreatePoll(voterA, []string{"only"}, "100", "2000", 10, 0, testNow.Unix()+3600)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	_, err = recorder.CreatePoll(voterA, []string{"Yes", "No"}, "0", "2000", 10, 0, testNow.Unix()+3600)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	_, err = recorder.CreatePoll(voterA, []string{"Yes", "No"}, "100", "2000", 10, 0, testNow.Unix()-1)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	// a label carrying the storage separator would corrupt the option list
	_, err = recorder.CreatePoll(voterA, []string{"Yes", "No\x1fMaybe"}, "100", "2000", 10, 0, testNow.Unix()+3600)
	require.ErrorIs(t, err, common.ErrInvalidPoll)
}
