// Package telemetry builds the engine's single *zap.Logger, the way
// the teacher's command binaries build theirs: a zap.Config tuned for
// this process, never a package-level global (spec.md §6 ambient
// stack).
package telemetry

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to logFile if non-empty, otherwise
// stderr, and stamps every line with a fresh run id (google/uuid) so
// two runs against the same structure are distinguishable in the logs
// and in the snapshot header.
func New(logFile string) (*zap.Logger, uuid.UUID, error) {
	runID := uuid.New()

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("telemetry: build logger: %w", err)
	}
	return logger.With(zap.String("run_id", runID.String())), runID, nil
}
