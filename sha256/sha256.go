package sha256

import (
	"hash"

	simd "github.com/minio/sha256-simd"
)

const (
	Size      = simd.Size
	BlockSize = simd.BlockSize
)

// New returns a new hash.Hash computing the SHA256 checksum.
func New() hash.Hash { return simd.New() }

// Sum256 returns the SHA256 checksum of the data.
func Sum256(data []byte) [Size]byte { return simd.Sum256(data) }
