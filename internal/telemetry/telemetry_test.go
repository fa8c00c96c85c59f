package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fritzo/pomagma-sub000/internal/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsDistinctRunIDsPerCall(t *testing.T) {
	log1, id1, err := telemetry.New("")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id1)
	defer log1.Sync()

	log2, id2, err := telemetry.New("")
	require.NoError(t, err)
	defer log2.Sync()

	require.NotEqual(t, id1, id2)
}

func TestNewWritesToRequestedLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	log, _, err := telemetry.New(path)
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}
