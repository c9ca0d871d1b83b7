// Package sha256 re-exports github.com/minio/sha256-simd, which uses the
// SHA extensions or AVX2 where the CPU has them and falls back to the standard
// library otherwise. Event ids are hashed here.
package sha256
