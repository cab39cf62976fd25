package results

import (
	"context"

	"github.com/cyphera/remote-accounts/internal/logger"
	"go.uber.org/zap"
)

// LogSink writes every record to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Write(_ context.Context, records []Record) error {
	for _, r := range records {
		fields := []zap.Field{
			logger.MessageID(r.MessageID),
			zap.Int("position", r.Position),
			logger.TransactionID(r.ID),
			logger.Kind(r.Kind),
			zap.String("source", r.SourceChain+":"+r.SourceAddress),
			zap.String("expected_address", r.ExpectedAddress.Hex()),
			zap.Bool("success", r.Success),
		}
		if r.Success {
			s.logger.Info("Instruction succeeded", fields...)
		} else {
			s.logger.Warn("Instruction failed", append(fields, zap.String("reason", r.Reason))...)
		}
	}
	return nil
}
