package submitter

import "time"

const (
	SubmitInterval  = 10 * time.Second
	ConfirmInterval = 10 * time.Second
	BatchSize       = 20
)
