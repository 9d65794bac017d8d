package blockfrost

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics records Blockfrost call outcomes.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveRetry(operation string)
		SetBreakerOpen(open bool)
	}
)
