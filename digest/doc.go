// Package digest computes and compares the content digests that identify
// manifest files.
//
// Digests are lowercase hex-encoded SHA-256 sums (64 characters). The package
// is a thin layer over github.com/opencontainers/go-digest:
//
//   - FromBytes / FromReader compute a digest.
//   - Validate checks the shape of a digest string declared by a manifest.
//   - Verify compares downloaded bytes against a declared digest.
//   - Hasher runs hashing on a bounded pool of worker goroutines so that
//     CPU-bound work on large files does not stall a filesystem scan.
package digest
