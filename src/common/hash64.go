package common

import "github.com/cespare/xxhash/v2"

// Hash64 returns a 64-bit digest of data.
func Hash64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
