package auditor

import "time"

const (
	AuditInterval = 5 * time.Minute
	BatchSize     = 100
)
