// Package cache stores synthesized audio on disk, addressed by a digest of
// the normalized text it was made from. Each distinct text is synthesized
// at most once, and entries survive restarts. An optional pruner can bound
// the directory size.
package cache
