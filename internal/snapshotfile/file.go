// Package snapshotfile is a reference snapshot.Writer/Reader backed by
// a flat, self-describing file written with encoding/gob. The engine
// binary loads and saves structures with it, and the signature package's
// dump tests round-trip through it; the wire format is
// explicitly out of scope for this repo (spec.md §1), so this is not
// meant to be the production format — no pack example hand-rolls
// protobuf without protoc, and fabricating generated code would
// violate the rule against fabricated dependencies (DESIGN.md).
package snapshotfile

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/fritzo/pomagma-sub000/snapshot"
	"github.com/google/uuid"
)

// fileFormat is the on-disk shape: a header carrying the run id that
// produced the snapshot, plus the table payloads.
type fileFormat struct {
	RunID  uuid.UUID
	Tables map[string]snapshot.TableDump
}

// File is an in-memory snapshot.Writer and snapshot.Reader that can be
// flushed to and loaded from a single path via Save/Load.
type File struct {
	runID  uuid.UUID
	tables map[string]snapshot.TableDump
}

// New returns an empty File with a zero run id, ready for WriteTable
// calls. WithRunID stamps it, typically with the engine run's own id
// (internal/telemetry mints one at startup), so a snapshot records which
// run produced it.
func New() *File {
	return &File{tables: make(map[string]snapshot.TableDump)}
}

// WithRunID stamps f with runID and returns f for chaining.
func (f *File) WithRunID(runID uuid.UUID) *File {
	f.runID = runID
	return f
}

// RunID returns the run id a loaded snapshot was stamped with.
func (f *File) RunID() uuid.UUID { return f.runID }

// WriteTable stores table in memory, keyed by name.
func (f *File) WriteTable(name string, table snapshot.TableDump) error {
	f.tables[name] = table
	return nil
}

// ReadTable retrieves a previously stored table.
func (f *File) ReadTable(name string) (snapshot.TableDump, error) {
	table, ok := f.tables[name]
	if !ok {
		return snapshot.TableDump{}, fmt.Errorf("snapshotfile: no table %q", name)
	}
	return table, nil
}

// Save gob-encodes the header and every stored table to path.
func (f *File) Save(path string) error {
	var buf bytes.Buffer
	format := fileFormat{RunID: f.runID, Tables: f.tables}
	if err := gob.NewEncoder(&buf).Encode(format); err != nil {
		return fmt.Errorf("snapshotfile: encode: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads path and returns the File it describes.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshotfile: read %s: %w", path, err)
	}
	var format fileFormat
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&format); err != nil {
		return nil, fmt.Errorf("snapshotfile: decode %s: %w", path, err)
	}
	if format.Tables == nil {
		format.Tables = make(map[string]snapshot.TableDump)
	}
	return &File{runID: format.RunID, tables: format.Tables}, nil
}
