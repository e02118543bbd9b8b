// Package id provides centralized ID generation for the backend.
//
// All server-assigned identifiers are ULIDs with a type prefix
// (conn_*, run_*) so logs stay readable and IDs sort by creation time.
// Collaboration session IDs are client-chosen opaque strings and are
// not generated here.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ConnID identifies a WebSocket connection.
type ConnID string

// RunID identifies a single sandboxed execution.
type RunID string

const (
	ConnPrefix = "conn"
	RunPrefix  = "run"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewConnID generates a new connection ID.
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(ConnPrefix))
}

// NewRunID generates a new execution ID.
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(RunPrefix))
}

func (id ConnID) String() string { return string(id) }
func (id RunID) String() string  { return string(id) }

// IsValid checks whether s carries the given prefix and a parseable ULID.
func IsValid(s, prefix string) bool {
	raw, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(raw)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed ID.
func Timestamp(s, prefix string) (time.Time, error) {
	raw, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return time.Time{}, fmt.Errorf("id %q does not carry prefix %q", s, prefix)
	}
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
