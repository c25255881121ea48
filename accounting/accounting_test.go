package accounting

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/binpoll/binpoll-settler/common"
)

func TestSplit_ExactConservation(t *testing.T) {
	// values chosen so that neither fee divides evenly
	for _, total := range []int64{1, 7, 99, 10001, 33333, 1_000_000_000_000_000_007} {
		split, err := Split(sdkmath.NewInt(total))
		require.NoError(t, err)
		sum := split.WinnerPool.Add(split.PlatformFee).Add(split.CreatorFee)
		require.True(t, sum.Equal(sdkmath.NewInt(total)), "leaked funds at total=%d", total)
	}
}

func TestSplit_Percentages(t *testing.T) {
	// 0.032 in 1e18 units: deposit 0.002 + voter pool 0.03
	total := sdkmath.NewInt(32_000_000_000_000_000)
	split, err := Split(total)
	require.NoError(t, err)
	require.Equal(t, "27200000000000000", split.WinnerPool.String()) // 85%
	require.Equal(t, "3200000000000000", split.PlatformFee.String()) // 10%
	require.Equal(t, "1600000000000000", split.CreatorFee.String())  // 5%
}

func TestSplit_RemainderGoesToWinnerPool(t *testing.T) {
	// 10001: platform floor = 1000, creator floor = 500, winner = 8501
	split, err := Split(sdkmath.NewInt(10001))
	require.NoError(t, err)
	require.Equal(t, "1000", split.PlatformFee.String())
	require.Equal(t, "500", split.CreatorFee.String())
	require.Equal(t, "8501", split.WinnerPool.String())
}

func TestSplit_NegativePool(t *testing.T) {
	_, err := Split(sdkmath.NewInt(-1))
	require.ErrorIs(t, err, common.ErrInvalidPoll)
}

func TestRewardPerWinner(t *testing.T) {
	reward, remainder, err := RewardPerWinner(sdkmath.NewInt(27_200_000_000_000_000), 2)
	require.NoError(t, err)
	require.Equal(t, "13600000000000000", reward.String()) // 0.0136 each
	require.True(t, remainder.IsZero())

	reward, remainder, err = RewardPerWinner(sdkmath.NewInt(100), 3)
	require.NoError(t, err)
	require.Equal(t, "33", reward.String())
	require.Equal(t, "1", remainder.String())

	_, _, err = RewardPerWinner(sdkmath.NewInt(100), 0)
	require.ErrorIs(t, err, common.ErrInvalidPoll)
}

func TestValidateCreatorDeposit(t *testing.T) {
	min := sdkmath.NewInt(2_000_000_000_000_000)
	require.NoError(t, ValidateCreatorDeposit(min, min))
	require.NoError(t, ValidateCreatorDeposit(min.AddRaw(1), min))
	err := ValidateCreatorDeposit(min.SubRaw(1), min)
	require.ErrorIs(t, err, common.ErrInsufficientDeposit)
}
