package settlement

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/binpoll/binpoll-settler/accounting"
	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/util"
)

// Payout is one entry of the transfer table handed to the payout submitter.
type Payout struct {
	Address string
	Amount  sdkmath.Int
}

// Outcome is the full settlement decision for one poll. All amounts sum to
// the poll's total pool exactly.
type Outcome struct {
	WinningOption   uint32
	TotalWinners    uint64
	RewardPerWinner sdkmath.Int
	TotalRewardPool sdkmath.Int // amount actually distributed to winners
	PlatformFee     sdkmath.Int // includes the per-winner division remainder
	CreatorFee      sdkmath.Int
	CreatorRefund   sdkmath.Int // winner-pool share returned to the creator when nobody won
	Payouts         []Payout
}

// Decide computes the winner and the payout table for an ended, unsettled
// poll. It is a pure function of the poll snapshot, its votes and the clock;
// it mutates nothing and can be re-run safely.
//
// The winning option is the one with the strictly greatest tally, ties break
// to the lowest option index. If the poll ends without a single vote on the
// winning option (which includes polls with no votes at all), the winner-pool
// share is refunded to the creator instead of being distributed.
func Decide(poll *model.Poll, votes []*model.Vote, now time.Time) (*Outcome, error) {
	if poll.Settled {
		return nil, common.ErrAlreadySettled
	}
	if now.Unix() < poll.EndTime {
		return nil, common.ErrPollStillActive
	}
	if poll.OptionCount == 0 {
		return nil, fmt.Errorf("%w: poll %d has no options", common.ErrInvalidPoll, poll.PollId)
	}

	tally := make([]uint64, poll.OptionCount)
	for _, vote := range votes {
		if vote.OptionIndex < poll.OptionCount {
			tally[vote.OptionIndex]++
		}
	}
	winningOption := uint32(0)
	for i := uint32(1); i < poll.OptionCount; i++ {
		if tally[i] > tally[winningOption] {
			winningOption = i
		}
	}
	totalWinners := tally[winningOption]

	totalPool := util.MustAmount(poll.CreatorDeposit).Add(util.MustAmount(poll.VoterPool))
	split, err := accounting.Split(totalPool)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		WinningOption:   winningOption,
		TotalWinners:    totalWinners,
		RewardPerWinner: sdkmath.ZeroInt(),
		TotalRewardPool: sdkmath.ZeroInt(),
		PlatformFee:     split.PlatformFee,
		CreatorFee:      split.CreatorFee,
		CreatorRefund:   sdkmath.ZeroInt(),
	}

	if totalWinners == 0 {
		outcome.CreatorRefund = split.WinnerPool
		outcome.Payouts = []Payout{
			{Address: poll.Creator, Amount: split.CreatorFee.Add(split.WinnerPool)},
		}
		return outcome, nil
	}

	reward, remainder, err := accounting.RewardPerWinner(split.WinnerPool, totalWinners)
	if err != nil {
		return nil, err
	}
	outcome.RewardPerWinner = reward
	outcome.TotalRewardPool = split.WinnerPool.Sub(remainder)
	outcome.PlatformFee = split.PlatformFee.Add(remainder)

	payouts := make([]Payout, 0, totalWinners+1)
	for _, vote := range votes {
		if vote.OptionIndex == winningOption {
			payouts = append(payouts, Payout{Address: vote.Voter, Amount: reward})
		}
	}
	payouts = append(payouts, Payout{Address: poll.Creator, Amount: split.CreatorFee})
	outcome.Payouts = payouts
	return outcome, nil
}
