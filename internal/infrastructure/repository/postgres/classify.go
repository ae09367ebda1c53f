package postgres

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/pyrolyze/chartrack/internal/infrastructure/resilience"
)

// classifyPostgresError retries connection-level failures; anything else is a
// real statement error and recorded as a breaker failure without retry.
func classifyPostgresError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, io.EOF) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
