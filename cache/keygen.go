package cache

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultPrefix namespaces every key written by this service
const DefaultPrefix = "spimex"

// KeySeparator joins the segments of a cache key
const KeySeparator = ":"

const (
	partAbsent  byte = 0
	partPresent byte = 1
)

// KeyGenerator builds stable cache keys from query parameters
type KeyGenerator struct {
	Prefix string
}

// NewKeyGenerator returns a generator using prefix, or DefaultPrefix when empty
func NewKeyGenerator(prefix string) KeyGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return KeyGenerator{Prefix: prefix}
}

// Plain composes a human readable key, for parameters that are already string safe
func (kg KeyGenerator) Plain(namespace, value string) string {
	return strings.Join([]string{kg.prefix(), namespace, value}, KeySeparator)
}

// Hashed composes a key from the namespace and a 64-bit xxhash digest of the
// ordered parts. A nil part marks an absent parameter.
func (kg KeyGenerator) Hashed(namespace string, parts ...*string) string {
	return strings.Join([]string{kg.prefix(), namespace, HashParts(parts...)}, KeySeparator)
}

func (kg KeyGenerator) prefix() string {
	if kg.Prefix == "" {
		return DefaultPrefix
	}
	return kg.Prefix
}

// HashParts returns the hex encoded xxhash64 of the ordered parts.
// Each part is written as a presence tag followed by a length prefixed value,
// so an absent part never hashes like any literal string.
func HashParts(parts ...*string) string {
	d := xxhash.New()
	var lenBuf [binary.MaxVarintLen64]byte
	for _, p := range parts {
		if p == nil {
			_, _ = d.Write([]byte{partAbsent})
			continue
		}
		_, _ = d.Write([]byte{partPresent})
		n := binary.PutUvarint(lenBuf[:], uint64(len(*p)))
		_, _ = d.Write(lenBuf[:n])
		_, _ = d.WriteString(*p)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
