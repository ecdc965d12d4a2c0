package prefixsum

import (
	"fmt"
	"math"
)

// Location identifies the element that contains a cumulative position.
type Location struct {
	Index     int   // Element holding the position
	Remainder int64 // Offset of the position within that element
}

// Index maintains a weight sequence and a lazily computed prefix-sum cache.
// Create one with New or FromInts.
type Index struct {
	values []uint32

	// prefixSum[i] == values[0] + ... + values[i] for every i <= validIndex.
	// Entries past validIndex are stale and recomputed on demand.
	prefixSum  []uint32
	validIndex int
}

// New creates an index over a copy of values.
func New(values []uint32) *Index {
	idx := &Index{}
	idx.Reset(values)
	return idx
}

// FromInts creates an index from int weights.
// Every weight must fit in a uint32.
func FromInts(values []int) (*Index, error) {
	converted := make([]uint32, len(values))
	for i, v := range values {
		if v < 0 || uint64(v) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: weight %d at index %d not in [0, %d]", ErrInvalidArgument, v, i, uint32(math.MaxUint32))
		}
		converted[i] = uint32(v)
	}
	return &Index{
		values:     converted,
		prefixSum:  make([]uint32, len(converted)),
		validIndex: -1,
	}, nil
}

// Reset replaces the whole weight sequence and discards the cache.
func (idx *Index) Reset(values []uint32) {
	idx.values = make([]uint32, len(values))
	copy(idx.values, values)
	idx.prefixSum = make([]uint32, len(values))
	idx.validIndex = -1
}

// Len returns the number of weights.
func (idx *Index) Len() int {
	return len(idx.values)
}

// Value returns the weight at index i.
func (idx *Index) Value(i int) uint32 {
	return idx.values[i]
}

// Values returns a copy of the weight sequence.
func (idx *Index) Values() []uint32 {
	out := make([]uint32, len(idx.values))
	copy(out, idx.values)
	return out
}

// Insert splices values into the sequence before position at.
// Returns false without changing anything if values is empty.
func (idx *Index) Insert(at int, values []uint32) (bool, error) {
	if at < 0 || at > len(idx.values) {
		return false, fmt.Errorf("%w: insert position %d not in [0, %d]", ErrInvalidArgument, at, len(idx.values))
	}
	if len(values) == 0 {
		return false, nil
	}

	oldValues := idx.values
	oldPrefixSum := idx.prefixSum

	idx.values = make([]uint32, len(oldValues)+len(values))
	copy(idx.values, oldValues[:at])
	copy(idx.values[at:], values)
	copy(idx.values[at+len(values):], oldValues[at:])

	idx.lowerValidIndex(at - 1)
	idx.prefixSum = make([]uint32, len(idx.values))
	if idx.validIndex >= 0 {
		copy(idx.prefixSum, oldPrefixSum[:idx.validIndex+1])
	}
	return true, nil
}

// Replace sets the weight at index to value.
// Returns false if the weight already equals value.
func (idx *Index) Replace(index int, value uint32) (bool, error) {
	if index < 0 || index >= len(idx.values) {
		return false, fmt.Errorf("%w: index %d not in [0, %d)", ErrInvalidArgument, index, len(idx.values))
	}
	if idx.values[index] == value {
		return false, nil
	}
	idx.values[index] = value
	idx.lowerValidIndex(index - 1)
	return true, nil
}

// Remove deletes count weights starting at start. The count is clamped to
// the end of the sequence; a run that clamps to nothing returns false.
func (idx *Index) Remove(start, count int) (bool, error) {
	if start < 0 {
		return false, fmt.Errorf("%w: remove start %d is negative", ErrInvalidArgument, start)
	}
	if start >= len(idx.values) {
		return false, nil
	}
	if maxCount := len(idx.values) - start; count > maxCount {
		count = maxCount
	}
	if count <= 0 {
		return false, nil
	}

	oldValues := idx.values
	oldPrefixSum := idx.prefixSum

	idx.values = make([]uint32, len(oldValues)-count)
	copy(idx.values, oldValues[:start])
	copy(idx.values[start:], oldValues[start+count:])

	idx.lowerValidIndex(start - 1)
	idx.prefixSum = make([]uint32, len(idx.values))
	if idx.validIndex >= 0 {
		copy(idx.prefixSum, oldPrefixSum[:idx.validIndex+1])
	}
	return true, nil
}

// TotalSum returns the sum of all weights.
func (idx *Index) TotalSum() uint32 {
	if len(idx.values) == 0 {
		return 0
	}
	return idx.SumThrough(len(idx.values) - 1)
}

// SumThrough returns values[0] + ... + values[index].
// A negative index yields 0; an index past the end is clamped to the last
// element.
func (idx *Index) SumThrough(index int) uint32 {
	if index < 0 || len(idx.values) == 0 {
		return 0
	}
	if index >= len(idx.values) {
		index = len(idx.values) - 1
	}
	if index <= idx.validIndex {
		return idx.prefixSum[index]
	}

	start := idx.validIndex + 1
	if start == 0 {
		idx.prefixSum[0] = idx.values[0]
		start++
	}
	for i := start; i <= index; i++ {
		idx.prefixSum[i] = idx.prefixSum[i-1] + idx.values[i]
	}
	idx.validIndex = index
	return idx.prefixSum[index]
}

// Locate finds the element whose cumulative span contains pos, that is the
// index i with SumThrough(i-1) <= pos < SumThrough(i).
//
// Positions before the start resolve to index 0 and positions at or past
// TotalSum resolve to the last index; in both cases Remainder is measured
// from the start of the resolved element and may fall outside its weight.
// An empty index resolves everything to {0, pos}.
func (idx *Index) Locate(pos int64) Location {
	// Fill the whole cache so the search reads only valid sums.
	idx.TotalSum()

	low, high := 0, len(idx.values)-1
	mid := 0
	var midStart int64
	for low <= high {
		mid = low + (high-low)/2
		midStop := int64(idx.prefixSum[mid])
		midStart = midStop - int64(idx.values[mid])

		if pos < midStart {
			high = mid - 1
		} else if pos >= midStop {
			low = mid + 1
		} else {
			break
		}
	}
	return Location{Index: mid, Remainder: pos - midStart}
}

// LocateFloat floors pos and resolves it like Locate.
func (idx *Index) LocateFloat(pos float64) Location {
	return idx.Locate(int64(math.Floor(pos)))
}

// lowerValidIndex moves the watermark down to i if it is currently above.
func (idx *Index) lowerValidIndex(i int) {
	if i < idx.validIndex {
		idx.validIndex = i
	}
}
