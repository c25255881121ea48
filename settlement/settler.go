package settlement

import (
	"time"

	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/logging"
)

// Settler loads a poll's persisted state, runs the settlement decision and
// commits it. The commit goes through the data provider's conditional write,
// so calling SettlePoll twice for the same poll (or from two overlapping
// scheduler ticks) yields exactly one settlement; the loser of the race gets
// ErrAlreadySettled.
type Settler struct {
	dataProvider DataProvider
	now          func() time.Time
}

func NewSettler(dataProvider DataProvider) *Settler {
	return &Settler{
		dataProvider: dataProvider,
		now:          time.Now,
	}
}

// WithClock replaces the time source, used by tests with simulated clocks.
func (s *Settler) WithClock(now func() time.Time) *Settler {
	s.now = now
	return s
}

func (s *Settler) SettlePoll(pollId uint64) (*model.Settlement, error) {
	poll, err := s.dataProvider.GetPollByPollId(pollId)
	if err != nil {
		return nil, err
	}
	votes, err := s.dataProvider.GetVotesByPollId(pollId)
	if err != nil {
		return nil, err
	}

	outcome, err := Decide(poll, votes, s.now())
	if err != nil {
		return nil, err
	}

	settlement := &model.Settlement{
		PollId:          poll.PollId,
		WinningOption:   outcome.WinningOption,
		TotalWinners:    outcome.TotalWinners,
		RewardPerWinner: outcome.RewardPerWinner.String(),
		TotalRewardPool: outcome.TotalRewardPool.String(),
		PlatformFee:     outcome.PlatformFee.String(),
		CreatorFee:      outcome.CreatorFee.String(),
		CreatorRefund:   outcome.CreatorRefund.String(),
		Status:          model.PayoutPending,
		CreatedTime:     s.now().Unix(),
	}
	err = s.dataProvider.SaveSettlementAndMarkSettled(settlement)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("poll %d settled, winning option %d, winners %d, reward per winner %s",
		poll.PollId, outcome.WinningOption, outcome.TotalWinners, outcome.RewardPerWinner.String())
	return settlement, nil
}
