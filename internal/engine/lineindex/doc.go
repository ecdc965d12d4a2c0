// Package lineindex maps byte offsets to line/column points and back.
//
// The index never stores text. It keeps one weight per line (content bytes
// plus terminator bytes) in a prefixsum.Index, so converting an offset is a
// binary search over cumulative line lengths and converting a point is one
// prefix-sum lookup. Edits are applied as structural splices on those
// weights, mirroring the text model without copying it.
//
// Line terminators "\n", "\r\n" and a bare "\r" are all recognised. Edits
// that split a "\r\n" pair are applied literally and are not re-joined.
package lineindex
