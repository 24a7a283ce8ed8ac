// Package hash provides the 64-bit content hash used for cache keys and
// document fingerprints.
package hash

import (
	"github.com/minio/highwayhash"
)

var key = []byte("projectlens-highwayhash-key-0001")

// Sum64 returns the HighwayHash-64 of data.
func Sum64(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// String hashes the concatenation of parts separated by newlines.
func String(parts ...string) uint64 {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0
	}
	for i, part := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{'\n'})
		}
		_, _ = h.Write([]byte(part))
	}
	return h.Sum64()
}
