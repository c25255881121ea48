// Package pricing holds the single implementation of the dynamic vote price
// curve. Every consumer, the authoritative vote-recording path and the
// read-only quote path alike, must call NextVotePrice instead of restating
// the formula.
package pricing

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/binpoll/binpoll-settler/common"
)

// NextVotePrice returns the price the next voter must pay on a poll with the
// given base price and vote count. The multiplier grows linearly with the
// fill ratio, 1x at an empty poll up to (1 + PriceCurveSlope)x at capacity:
//
//	price = basePrice * (maxVotes + slope*currentVotes) / maxVotes
//
// computed with floor integer division so that independent callers can never
// disagree on the amount.
func NextVotePrice(basePrice sdkmath.Int, currentVotes, maxVotes uint64) (sdkmath.Int, error) {
	if maxVotes == 0 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: max votes must be positive", common.ErrInvalidPoll)
	}
	if currentVotes > maxVotes {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: current votes %d exceeds max votes %d", common.ErrInvalidPoll, currentVotes, maxVotes)
	}
	if !basePrice.IsPositive() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: base price must be positive", common.ErrInvalidPoll)
	}

	numerator := sdkmath.NewIntFromUint64(maxVotes).
		Add(sdkmath.NewIntFromUint64(currentVotes).MulRaw(common.PriceCurveSlope))
	return basePrice.Mul(numerator).Quo(sdkmath.NewIntFromUint64(maxVotes)), nil
}
