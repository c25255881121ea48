package scheduler

import "time"

const (
	DefaultTickInterval   = 1 * time.Minute
	DefaultStuckThreshold = 30 * time.Minute
	DefaultBatchSize      = 50
)
