// Package accounting computes the settlement-time split of a poll's pool.
// All amounts are big integers in smallest units, every function conserves
// its input exactly: nothing is created or lost to rounding.
package accounting

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/binpoll/binpoll-settler/common"
)

// PoolSplit is the three-way division of a poll's total pool at settlement.
type PoolSplit struct {
	WinnerPool  sdkmath.Int
	PlatformFee sdkmath.Int
	CreatorFee  sdkmath.Int
}

// Split divides totalPool by the fixed basis-point shares. The fee components
// are floored, the winner pool absorbs the rounding remainder, so the three
// parts always sum to totalPool exactly.
func Split(totalPool sdkmath.Int) (PoolSplit, error) {
	if totalPool.IsNegative() {
		return PoolSplit{}, fmt.Errorf("%w: negative pool", common.ErrInvalidPoll)
	}
	denom := sdkmath.NewInt(common.TotalBps)
	platformFee := totalPool.MulRaw(common.PlatformFeeBps).Quo(denom)
	creatorFee := totalPool.MulRaw(common.CreatorFeeBps).Quo(denom)
	winnerPool := totalPool.Sub(platformFee).Sub(creatorFee)
	return PoolSplit{
		WinnerPool:  winnerPool,
		PlatformFee: platformFee,
		CreatorFee:  creatorFee,
	}, nil
}

// RewardPerWinner floors the per-winner share of the winner pool. The
// division remainder is returned separately and accrues to the platform fee,
// keeping the settlement total conserved.
func RewardPerWinner(winnerPool sdkmath.Int, totalWinners uint64) (reward, remainder sdkmath.Int, err error) {
	if totalWinners == 0 {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("%w: zero winners", common.ErrInvalidPoll)
	}
	if winnerPool.IsNegative() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), fmt.Errorf("%w: negative winner pool", common.ErrInvalidPoll)
	}
	winners := sdkmath.NewIntFromUint64(totalWinners)
	reward = winnerPool.Quo(winners)
	remainder = winnerPool.Sub(reward.Mul(winners))
	return reward, remainder, nil
}

// ValidateCreatorDeposit gates poll creation on the configured minimum.
func ValidateCreatorDeposit(amount, minDeposit sdkmath.Int) error {
	if amount.LT(minDeposit) {
		return fmt.Errorf("%w: got %s, minimum %s", common.ErrInsufficientDeposit, amount, minDeposit)
	}
	return nil
}
