package settlement

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/util"
)

var testNow = time.Unix(1_700_000_000, 0)

func endedPoll(optionCount uint32, deposit, voterPool string) *model.Poll {
	return &model.Poll{
		PollId:         1,
		Creator:        "0xc1",
		OptionCount:    optionCount,
		Options:        util.JoinOptions([]string{"A", "B", "C"}[:optionCount]),
		BasePrice:      "10000000000000000",
		MaxVotes:       100,
		CreatorDeposit: deposit,
		VoterPool:      voterPool,
		EndTime:        testNow.Unix() - 60,
		OnChain:        true,
	}
}

func vote(voter string, option uint32, amount string) *model.Vote {
	return &model.Vote{PollId: 1, Voter: voter, OptionIndex: option, AmountPaid: amount}
}

func TestDecide_WinnerAndPayouts(t *testing.T) {
	// deposit 0.002, voter pool 0.03, total 0.032
	poll := endedPoll(2, "2000000000000000", "30000000000000000")
	votes := []*model.Vote{
		vote("0xaa", 0, "10000000000000000"),
		vote("0xbb", 0, "10000000000000000"),
		vote("0xcc", 1, "10000000000000000"),
	}
	poll.CurrentVotes = 3

	outcome, err := Decide(poll, votes, testNow)
	require.NoError(t, err)
	require.Equal(t, uint32(0), outcome.WinningOption)
	require.Equal(t, uint64(2), outcome.TotalWinners)
	require.Equal(t, "13600000000000000", outcome.RewardPerWinner.String()) // 0.0136 each
	require.Equal(t, "27200000000000000", outcome.TotalRewardPool.String())
	require.Equal(t, "3200000000000000", outcome.PlatformFee.String())
	require.Equal(t, "1600000000000000", outcome.CreatorFee.String())
	require.True(t, outcome.CreatorRefund.IsZero())

	// winners each, then the creator fee entry
	require.Len(t, outcome.Payouts, 3)
	require.Equal(t, "0xaa", outcome.Payouts[0].Address)
	require.Equal(t, "0xbb", outcome.Payouts[1].Address)
	require.Equal(t, "0xc1", outcome.Payouts[2].Address)
}

func TestDecide_FundConservation(t *testing.T) {
	poll := endedPoll(3, "2001", "30007") // awkward numbers to force remainders
	votes := []*model.Vote{
		vote("0xaa", 2, "10002"),
		vote("0xbb", 2, "10002"),
		vote("0xcc", 2, "10003"),
		vote("0xdd", 1, "10000"),
	}

	outcome, err := Decide(poll, votes, testNow)
	require.NoError(t, err)

	total := util.MustAmount(poll.CreatorDeposit).Add(util.MustAmount(poll.VoterPool))
	sum := outcome.TotalRewardPool.Add(outcome.PlatformFee).Add(outcome.CreatorFee).Add(outcome.CreatorRefund)
	require.True(t, sum.Equal(total), "settlement leaked funds: %s != %s", sum, total)
	require.True(t, outcome.RewardPerWinner.MulRaw(int64(outcome.TotalWinners)).Equal(outcome.TotalRewardPool))
}

func TestDecide_TieBreaksToLowestIndex(t *testing.T) {
	poll := endedPoll(3, "2000", "40000")
	votes := []*model.Vote{
		vote("0xaa", 2, "10000"),
		vote("0xbb", 1, "10000"),
		vote("0xcc", 1, "10000"),
		vote("0xdd", 2, "10000"),
	}

	outcome, err := Decide(poll, votes, testNow)
	require.NoError(t, err)
	require.Equal(t, uint32(1), outcome.WinningOption)
	require.Equal(t, uint64(2), outcome.TotalWinners)
}

func TestDecide_ZeroVotes(t *testing.T) {
	poll := endedPoll(2, "2000000000000000", "0")

	outcome, err := Decide(poll, nil, testNow)
	require.NoError(t, err)
	require.Equal(t, uint64(0), outcome.TotalWinners)
	require.True(t, outcome.RewardPerWinner.IsZero())
	require.True(t, outcome.TotalRewardPool.IsZero())

	// winner pool goes back to the creator, fees unchanged
	total := util.MustAmount(poll.CreatorDeposit)
	sum := outcome.PlatformFee.Add(outcome.CreatorFee).Add(outcome.CreatorRefund)
	require.True(t, sum.Equal(total))
	require.Len(t, outcome.Payouts, 1)
	require.Equal(t, poll.Creator, outcome.Payouts[0].Address)
	require.True(t, outcome.Payouts[0].Amount.Equal(outcome.CreatorFee.Add(outcome.CreatorRefund)))
}

func TestDecide_Guards(t *testing.T) {
	poll := endedPoll(2, "2000", "0")
	poll.Settled = true
	_, err := Decide(poll, nil, testNow)
	require.ErrorIs(t, err, common.ErrAlreadySettled)

	active := endedPoll(2, "2000", "0")
	active.EndTime = testNow.Unix() + 3600
	_, err = Decide(active, nil, testNow)
	require.ErrorIs(t, err, common.ErrPollStillActive)

	// settling exactly at the end time is allowed
	boundary := endedPoll(2, "2000", "0")
	boundary.EndTime = testNow.Unix()
	_, err = Decide(boundary, nil, testNow)
	require.NoError(t, err)

	// a corrupt row with no options must not panic the scheduler goroutine
	corrupt := endedPoll(0, "2000", "0")
	_, err = Decide(corrupt, nil, testNow)
	require.ErrorIs(t, err, common.ErrInvalidPoll)
}

func TestDecide_RemainderAccruesToPlatform(t *testing.T) {
	poll := endedPoll(2, "0", "100") // winner pool 85, platform 10, creator 5
	votes := []*model.Vote{
		vote("0xaa", 0, "34"),
		vote("0xbb", 0, "33"),
		vote("0xcc", 0, "33"),
	}

	outcome, err := Decide(poll, votes, testNow)
	require.NoError(t, err)
	// 85 / 3 = 28 each, remainder 1 to the platform
	require.Equal(t, "28", outcome.RewardPerWinner.String())
	require.Equal(t, "84", outcome.TotalRewardPool.String())
	require.Equal(t, "11", outcome.PlatformFee.String())
	require.Equal(t, "5", outcome.CreatorFee.String())

	sum := outcome.TotalRewardPool.Add(outcome.PlatformFee).Add(outcome.CreatorFee)
	require.True(t, sum.Equal(sdkmath.NewInt(100)))
}
