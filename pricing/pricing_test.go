package pricing

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/binpoll/binpoll-settler/common"
)

func TestNextVotePrice_FirstVoteCostsBase(t *testing.T) {
	base := sdkmath.NewInt(10_000_000_000_000_000) // 0.01 in 1e18 units
	price, err := NextVotePrice(base, 0, 100)
	require.NoError(t, err)
	require.True(t, price.Equal(base))
}

func TestNextVotePrice_Curve(t *testing.T) {
	base := sdkmath.NewInt(10_000_000_000_000_000) // 0.01

	// 50th vote: multiplier 1 + 49*4/100 = 2.96
	price, err := NextVotePrice(base, 49, 100)
	require.NoError(t, err)
	require.Equal(t, "29600000000000000", price.String())

	// last vote: multiplier 1 + 99*4/100 = 4.96
	price, err = NextVotePrice(base, 99, 100)
	require.NoError(t, err)
	require.Equal(t, "49600000000000000", price.String())

	// the multiplier reaches exactly 5x at capacity
	price, err = NextVotePrice(base, 100, 100)
	require.NoError(t, err)
	require.True(t, price.Equal(base.MulRaw(5)))
}

func TestNextVotePrice_Monotonic(t *testing.T) {
	base := sdkmath.NewInt(7) // tiny base to exercise floor rounding
	maxVotes := uint64(13)

	prev := sdkmath.ZeroInt()
	for v := uint64(0); v < maxVotes; v++ {
		price, err := NextVotePrice(base, v, maxVotes)
		require.NoError(t, err)
		require.True(t, price.GTE(prev), "price decreased at currentVotes=%d", v)
		require.True(t, price.GTE(base))
		require.True(t, price.LTE(base.MulRaw(5)))
		prev = price
	}
}

func TestNextVotePrice_Deterministic(t *testing.T) {
	base := sdkmath.NewInt(12345)
	a, err := NextVotePrice(base, 7, 20)
	require.NoError(t, err)
	b, err := NextVotePrice(base, 7, 20)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestNextVotePrice_InvalidInput(t *testing.T) {
	base := sdkmath.NewInt(100)

	_, err := NextVotePrice(base, 0, 0)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	_, err = NextVotePrice(base, 11, 10)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	_, err = NextVotePrice(sdkmath.ZeroInt(), 0, 10)
	require.ErrorIs(t, err, common.ErrInvalidPoll)

	_, err = NextVotePrice(sdkmath.NewInt(-1), 0, 10)
	require.ErrorIs(t, err, common.ErrInvalidPoll)
}
