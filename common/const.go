package common

import (
	"time"

	"github.com/avast/retry-go/v4"
)

var (
	RetryAttemptNum = uint(5)
	RtyAttem        = retry.Attempts(RetryAttemptNum)
	RtyDelay        = retry.Delay(time.Millisecond * 400)
	RtyErr          = retry.LastErrorOnly(true)
)

const (
	RetryInterval = 2 * time.Second

	// pricing curve: the vote price climbs linearly from 1x base price at an
	// empty poll to 5x base price at capacity
	PriceCurveSlope = 4

	// pool split in basis points, winner pool takes the rounding remainder
	WinnerPoolBps  = 8500
	PlatformFeeBps = 1000
	CreatorFeeBps  = 500
	TotalBps       = 10000
)
