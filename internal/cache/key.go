// Package cache stores generated sources on disk keyed by a digest of every
// input that influences them.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"fortio.org/safecast"
)

// Digest is a SHA-256 value.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Key lists the inputs of one generation run.
type Key struct {
	Manifest   []byte
	Package    string
	Library    string
	RootObject string
	Indent     string
	Containers string
	Version    string
}

// Digest hashes the key fields, each prefixed with its length so adjacent
// fields cannot run together.
func (k Key) Digest() (Digest, error) {
	h := sha256.New()
	fields := [][]byte{
		k.Manifest,
		[]byte(k.Package),
		[]byte(k.Library),
		[]byte(k.RootObject),
		[]byte(k.Indent),
		[]byte(k.Containers),
		[]byte(k.Version),
	}
	for i, f := range fields {
		if err := writeField(h, f); err != nil {
			return Digest{}, fmt.Errorf("cache key field %d: %w", i, err)
		}
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}

func writeField(h hash.Hash, b []byte) error {
	n, err := safecast.Conv[uint32](len(b))
	if err != nil {
		return err
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], n)
	_, _ = h.Write(prefix[:])
	_, _ = h.Write(b)
	return nil
}
