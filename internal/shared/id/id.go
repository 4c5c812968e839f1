// Package id provides centralized ID generation for the framework.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: dispatch queues stay time-ordered by id
//   - Prefixed types: type-specific prefixes for debugging (msg_*, tap_*, req_*)
//   - Type safety: separate types prevent ID misuse
//
// Model instances keep their own UUID identity (see internal/domain/model);
// everything transient on the bus is identified here.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// MessageID identifies a dispatched message
type MessageID string

// TapID identifies a live dispatch tap
type TapID string

// TraceID identifies an inspector API request
type TraceID string

// AssetID identifies a loaded data asset
type AssetID string

// ============================================================================
// ID Prefixes (for debugging and type identification)
// ============================================================================

const (
	MessagePrefix = "msg"
	TapPrefix     = "tap"
	TracePrefix   = "req"
	AssetPrefix   = "res"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	// Default generator with cryptographically secure entropy
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewMessageID generates a new dispatch message ID
func NewMessageID() MessageID {
	return MessageID(Default().GenerateWithPrefix(MessagePrefix))
}

// NewTapID generates a new tap ID
func NewTapID() TapID {
	return TapID(Default().GenerateWithPrefix(TapPrefix))
}

// NewTraceID generates a new request trace ID
func NewTraceID() TraceID {
	return TraceID(Default().GenerateWithPrefix(TracePrefix))
}

// NewAssetID generates a new data asset ID
func NewAssetID() AssetID {
	return AssetID(Default().GenerateWithPrefix(AssetPrefix))
}

// ============================================================================
// Type Conversion and Validation
// ============================================================================

// String methods for ID types
func (id MessageID) String() string { return string(id) }
func (id TapID) String() string     { return string(id) }
func (id TraceID) String() string   { return string(id) }
func (id AssetID) String() string   { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the creation time from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
