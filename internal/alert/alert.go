// Package alert emits security alerts for payment validation failures. The
// log sink stands in for the real alerting channel, which is an external
// collaborator.
package alert

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

type SecurityAlert struct {
	ID              string
	Kind            string
	Severity        Severity
	CartID          string
	ProcessorAmount int64
	ServerAmount    int64
	Discrepancy     int64
	Currency        string
	Detail          string
	At              time.Time
}

type Sink interface {
	Security(ctx context.Context, a SecurityAlert)
}

type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Security(_ context.Context, a SecurityAlert) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	s.logger.Printf("SECURITY ALERT id=%s severity=%s kind=%s cart_id=%s processor_amount=%d server_amount=%d discrepancy=%d currency=%s detail=%q",
		a.ID, a.Severity, a.Kind, a.CartID, a.ProcessorAmount, a.ServerAmount, a.Discrepancy, a.Currency, a.Detail)
}
