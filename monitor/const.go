package monitor

import "time"

const (
	NoBlockSleep = 2 * time.Second
)
