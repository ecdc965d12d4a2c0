// Package prefixsum provides an incrementally maintained prefix-sum index
// over a mutable sequence of uint32 weights.
//
// The index keeps a cumulative-sum cache alongside the weights and tracks
// how far that cache is known to be correct. Structural edits (Insert,
// Remove, Replace) only lower that watermark; queries (SumThrough,
// TotalSum, Locate) extend it lazily. Repeated forward queries after a
// single edit therefore cost O(1) amortized each.
//
// Typical weights are per-line row counts (for mapping wrapped screen rows
// back to buffer lines) or per-line byte lengths (for mapping offsets to
// line/column points).
//
// # Thread Safety
//
// An Index is not safe for concurrent use. Queries write to the cache, so
// callers sharing an Index must serialize every call, reads included.
package prefixsum
