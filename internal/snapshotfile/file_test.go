package snapshotfile_test

import (
	"path/filepath"
	"testing"

	"github.com/fritzo/pomagma-sub000/internal/snapshotfile"
	"github.com/fritzo/pomagma-sub000/snapshot"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTripsTables(t *testing.T) {
	f := snapshotfile.New()
	require.NoError(t, f.WriteTable("EVEN", snapshot.TableDump{
		Name:         "EVEN",
		UnaryMembers: []uint32{1, 3, 5},
		Hash:         42,
	}))

	path := filepath.Join(t.TempDir(), "structure.gob")
	require.NoError(t, f.Save(path))

	loaded, err := snapshotfile.Load(path)
	require.NoError(t, err)

	dump, err := loaded.ReadTable("EVEN")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3, 5}, dump.UnaryMembers)
	require.Equal(t, uint64(42), dump.Hash)
}

func TestReadTableReportsMissingName(t *testing.T) {
	f := snapshotfile.New()
	_, err := f.ReadTable("NOPE")
	require.Error(t, err)
}

func TestSaveLoadRoundTripsRunID(t *testing.T) {
	runID := uuid.New()
	f := snapshotfile.New().WithRunID(runID)

	path := filepath.Join(t.TempDir(), "structure.gob")
	require.NoError(t, f.Save(path))

	loaded, err := snapshotfile.Load(path)
	require.NoError(t, err)
	require.Equal(t, runID, loaded.RunID())
}

func TestNewFileHasNilRunIDUntilStamped(t *testing.T) {
	f := snapshotfile.New()
	require.Equal(t, uuid.UUID{}, f.RunID())
}
