package prefixsum

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// naiveSum recomputes the inclusive prefix sum from scratch.
func naiveSum(values []uint32, index int) uint32 {
	var sum uint32
	for i := 0; i <= index && i < len(values); i++ {
		sum += values[i]
	}
	return sum
}

// checkConsistent verifies the cached sums of idx against values.
func checkConsistent(t *testing.T, idx *Index, values []uint32) {
	t.Helper()

	if diff := cmp.Diff(values, idx.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(idx.values) != len(idx.prefixSum) {
		t.Fatalf("len(values) = %d, len(prefixSum) = %d", len(idx.values), len(idx.prefixSum))
	}
	if idx.validIndex < -1 || idx.validIndex > len(idx.values)-1 {
		t.Fatalf("validIndex = %d, want in [-1, %d]", idx.validIndex, len(idx.values)-1)
	}
	for i := 0; i <= idx.validIndex; i++ {
		if want := naiveSum(values, i); idx.prefixSum[i] != want {
			t.Fatalf("prefixSum[%d] = %d below watermark %d, want %d", i, idx.prefixSum[i], idx.validIndex, want)
		}
	}
}

func TestNew(t *testing.T) {
	src := []uint32{1, 2, 3}
	idx := New(src)
	src[0] = 100

	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	if idx.Value(0) != 1 {
		t.Errorf("New should copy its input, Value(0) = %d", idx.Value(0))
	}
	if idx.validIndex != -1 {
		t.Errorf("validIndex = %d, want -1", idx.validIndex)
	}
}

func TestFromInts(t *testing.T) {
	idx, err := FromInts([]int{4, 0, 7})
	if err != nil {
		t.Fatalf("FromInts() error = %v", err)
	}
	if idx.TotalSum() != 11 {
		t.Errorf("TotalSum() = %d, want 11", idx.TotalSum())
	}

	for _, bad := range [][]int{{-1}, {1, math.MaxUint32 + 1}} {
		if _, err := FromInts(bad); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("FromInts(%v) error = %v, want ErrInvalidArgument", bad, err)
		}
	}
}

func TestScenarioUnitRows(t *testing.T) {
	idx := New([]uint32{1, 1, 1})

	if got := idx.TotalSum(); got != 3 {
		t.Errorf("TotalSum() = %d, want 3", got)
	}
	if got := idx.Locate(2); got != (Location{Index: 2, Remainder: 0}) {
		t.Errorf("Locate(2) = %+v, want {2 0}", got)
	}
}

func TestScenarioInsert(t *testing.T) {
	idx := New([]uint32{5, 5})

	changed, err := idx.Insert(1, []uint32{2, 3})
	if err != nil || !changed {
		t.Fatalf("Insert() = %v, %v, want true, nil", changed, err)
	}
	checkConsistent(t, idx, []uint32{5, 2, 3, 5})
	if got := idx.TotalSum(); got != 15 {
		t.Errorf("TotalSum() = %d, want 15", got)
	}
	if got := idx.SumThrough(1); got != 7 {
		t.Errorf("SumThrough(1) = %d, want 7", got)
	}
}

func TestScenarioRemove(t *testing.T) {
	idx := New([]uint32{5, 2, 3, 5})

	changed, err := idx.Remove(1, 2)
	if err != nil || !changed {
		t.Fatalf("Remove() = %v, %v, want true, nil", changed, err)
	}
	checkConsistent(t, idx, []uint32{5, 5})
	if got := idx.TotalSum(); got != 10 {
		t.Errorf("TotalSum() = %d, want 10", got)
	}
}

func TestScenarioReplace(t *testing.T) {
	idx := New([]uint32{10})

	if changed, err := idx.Replace(0, 10); changed || err != nil {
		t.Errorf("Replace(0, 10) = %v, %v, want false, nil", changed, err)
	}
	if changed, err := idx.Replace(0, 20); !changed || err != nil {
		t.Errorf("Replace(0, 20) = %v, %v, want true, nil", changed, err)
	}
	if got := idx.TotalSum(); got != 20 {
		t.Errorf("TotalSum() = %d, want 20", got)
	}
}

func TestScenarioEmpty(t *testing.T) {
	idx := New(nil)

	if got := idx.TotalSum(); got != 0 {
		t.Errorf("TotalSum() = %d, want 0", got)
	}
	if got := idx.Locate(0); got != (Location{}) {
		t.Errorf("Locate(0) = %+v, want {0 0}", got)
	}
	if got := idx.SumThrough(5); got != 0 {
		t.Errorf("SumThrough(5) = %d, want 0", got)
	}
}

func TestInsertNoop(t *testing.T) {
	idx := New([]uint32{1, 2})
	idx.TotalSum()

	changed, err := idx.Insert(1, nil)
	if changed || err != nil {
		t.Errorf("Insert(1, nil) = %v, %v, want false, nil", changed, err)
	}
	if idx.validIndex != 1 {
		t.Errorf("empty insert moved watermark to %d", idx.validIndex)
	}
}

func TestInsertBounds(t *testing.T) {
	tests := []struct {
		name string
		at   int
		ok   bool
	}{
		{"negative", -1, false},
		{"start", 0, true},
		{"end", 3, true},
		{"past end", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := New([]uint32{1, 2, 3})
			_, err := idx.Insert(tt.at, []uint32{9})
			if tt.ok && err != nil {
				t.Errorf("Insert(%d) error = %v", tt.at, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Insert(%d) error = %v, want ErrInvalidArgument", tt.at, err)
			}
			if !tt.ok && idx.Len() != 3 {
				t.Errorf("failed Insert changed length to %d", idx.Len())
			}
		})
	}
}

func TestReplaceBounds(t *testing.T) {
	idx := New([]uint32{1, 2, 3})

	for _, i := range []int{-1, 3, 10} {
		if _, err := idx.Replace(i, 7); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Replace(%d) error = %v, want ErrInvalidArgument", i, err)
		}
	}
	checkConsistent(t, idx, []uint32{1, 2, 3})
}

func TestReplaceIdempotent(t *testing.T) {
	idx := New([]uint32{3, 4, 5, 6})
	idx.SumThrough(2)

	for i := 0; i < idx.Len(); i++ {
		changed, err := idx.Replace(i, idx.Value(i))
		if changed || err != nil {
			t.Errorf("Replace(%d, same) = %v, %v, want false, nil", i, changed, err)
		}
	}
	if idx.validIndex != 2 {
		t.Errorf("validIndex = %d after no-op replaces, want 2", idx.validIndex)
	}
}

func TestRemoveClamping(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		count   int
		changed bool
		want    []uint32
	}{
		{"zero count", 1, 0, false, []uint32{1, 2, 3}},
		{"negative count", 1, -2, false, []uint32{1, 2, 3}},
		{"start at end", 3, 1, false, []uint32{1, 2, 3}},
		{"start past end", 10, 1, false, []uint32{1, 2, 3}},
		{"count past end", 1, 10, true, []uint32{1}},
		{"everything", 0, 3, true, []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := New([]uint32{1, 2, 3})
			changed, err := idx.Remove(tt.start, tt.count)
			if err != nil {
				t.Fatalf("Remove() error = %v", err)
			}
			if changed != tt.changed {
				t.Errorf("Remove(%d, %d) = %v, want %v", tt.start, tt.count, changed, tt.changed)
			}
			checkConsistent(t, idx, tt.want)
		})
	}

	idx := New([]uint32{1})
	if _, err := idx.Remove(-1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Remove(-1, 1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSumThroughBounds(t *testing.T) {
	idx := New([]uint32{2, 4, 6})

	if got := idx.SumThrough(-1); got != 0 {
		t.Errorf("SumThrough(-1) = %d, want 0", got)
	}
	if got := idx.SumThrough(99); got != idx.TotalSum() {
		t.Errorf("SumThrough(99) = %d, want TotalSum() = %d", got, idx.TotalSum())
	}
}

func TestWatermark(t *testing.T) {
	idx := New([]uint32{1, 1, 1, 1, 1, 1})

	idx.SumThrough(2)
	if idx.validIndex != 2 {
		t.Fatalf("validIndex = %d after SumThrough(2), want 2", idx.validIndex)
	}

	// A query below the watermark must not lower it.
	idx.SumThrough(0)
	if idx.validIndex != 2 {
		t.Errorf("validIndex = %d after SumThrough(0), want 2", idx.validIndex)
	}

	idx.TotalSum()
	if _, err := idx.Replace(4, 3); err != nil {
		t.Fatal(err)
	}
	if idx.validIndex != 3 {
		t.Errorf("validIndex = %d after Replace(4), want 3", idx.validIndex)
	}

	if _, err := idx.Insert(1, []uint32{7}); err != nil {
		t.Fatal(err)
	}
	if idx.validIndex != 0 {
		t.Errorf("validIndex = %d after Insert(1), want 0", idx.validIndex)
	}

	idx.TotalSum()
	if _, err := idx.Remove(0, 1); err != nil {
		t.Fatal(err)
	}
	if idx.validIndex != -1 {
		t.Errorf("validIndex = %d after Remove(0), want -1", idx.validIndex)
	}
}

func TestLocateRoundTrip(t *testing.T) {
	idx := New([]uint32{3, 0, 1, 5, 0, 2})

	for i := 0; i < idx.Len(); i++ {
		if idx.Value(i) == 0 {
			continue
		}
		start := int64(idx.SumThrough(i - 1))
		got := idx.Locate(start)
		if got != (Location{Index: i}) {
			t.Errorf("Locate(%d) = %+v, want {%d 0}", start, got, i)
		}
		last := int64(idx.SumThrough(i)) - 1
		got = idx.Locate(last)
		if want := (Location{Index: i, Remainder: int64(idx.Value(i)) - 1}); got != want {
			t.Errorf("Locate(%d) = %+v, want %+v", last, got, want)
		}
	}
}

func TestLocateOutOfRange(t *testing.T) {
	idx := New([]uint32{2, 3})

	tests := []struct {
		pos  int64
		want Location
	}{
		{-3, Location{Index: 0, Remainder: -3}},
		{5, Location{Index: 1, Remainder: 3}},
		{9, Location{Index: 1, Remainder: 7}},
	}
	for _, tt := range tests {
		if got := idx.Locate(tt.pos); got != tt.want {
			t.Errorf("Locate(%d) = %+v, want %+v", tt.pos, got, tt.want)
		}
	}
}

func TestLocateFloat(t *testing.T) {
	idx := New([]uint32{2, 2, 2})

	tests := []struct {
		pos  float64
		want Location
	}{
		{0.0, Location{Index: 0, Remainder: 0}},
		{1.99, Location{Index: 0, Remainder: 1}},
		{2.0, Location{Index: 1, Remainder: 0}},
		{4.5, Location{Index: 2, Remainder: 0}},
		{-0.5, Location{Index: 0, Remainder: -1}},
	}
	for _, tt := range tests {
		if got := idx.LocateFloat(tt.pos); got != tt.want {
			t.Errorf("LocateFloat(%v) = %+v, want %+v", tt.pos, got, tt.want)
		}
	}
}

func TestLocateFillsCache(t *testing.T) {
	idx := New([]uint32{1, 2, 3, 4})
	idx.Locate(0)
	if idx.validIndex != 3 {
		t.Errorf("validIndex = %d after Locate, want 3", idx.validIndex)
	}
}

func TestReset(t *testing.T) {
	idx := New([]uint32{1, 2})
	idx.TotalSum()
	idx.Reset([]uint32{4, 4, 4})

	checkConsistent(t, idx, []uint32{4, 4, 4})
	if idx.validIndex != -1 {
		t.Errorf("validIndex = %d after Reset, want -1", idx.validIndex)
	}
	if idx.TotalSum() != 12 {
		t.Errorf("TotalSum() = %d, want 12", idx.TotalSum())
	}
}

// TestRandomOperations drives the index and a plain slice with the same
// random edits and compares every query.
func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	model := []uint32{}
	idx := New(nil)

	for step := 0; step < 3000; step++ {
		switch op := rng.Intn(5); op {
		case 0:
			at := rng.Intn(len(model) + 1)
			ins := make([]uint32, rng.Intn(4))
			for i := range ins {
				ins[i] = uint32(rng.Intn(10))
			}
			changed, err := idx.Insert(at, ins)
			if err != nil {
				t.Fatalf("step %d: Insert(%d) error = %v", step, at, err)
			}
			if changed != (len(ins) > 0) {
				t.Fatalf("step %d: Insert changed = %v with %d values", step, changed, len(ins))
			}
			model = append(model[:at], append(append([]uint32{}, ins...), model[at:]...)...)
		case 1:
			if len(model) == 0 {
				continue
			}
			start := rng.Intn(len(model) + 1)
			count := rng.Intn(4)
			if _, err := idx.Remove(start, count); err != nil {
				t.Fatalf("step %d: Remove error = %v", step, err)
			}
			end := start + count
			if end > len(model) {
				end = len(model)
			}
			if start < len(model) {
				model = append(model[:start], model[end:]...)
			}
		case 2:
			if len(model) == 0 {
				continue
			}
			i := rng.Intn(len(model))
			v := uint32(rng.Intn(10))
			changed, err := idx.Replace(i, v)
			if err != nil {
				t.Fatalf("step %d: Replace error = %v", step, err)
			}
			if changed != (model[i] != v) {
				t.Fatalf("step %d: Replace changed = %v", step, changed)
			}
			model[i] = v
		case 3:
			i := rng.Intn(len(model)+2) - 1
			if got, want := idx.SumThrough(i), naiveSum(model, i); got != want {
				t.Fatalf("step %d: SumThrough(%d) = %d, want %d", step, i, got, want)
			}
		case 4:
			total := naiveSum(model, len(model)-1)
			pos := int64(rng.Intn(int(total) + 1))
			loc := idx.Locate(pos)
			if pos < int64(total) {
				start := int64(naiveSum(model, loc.Index-1))
				if pos < start || pos >= start+int64(model[loc.Index]) {
					t.Fatalf("step %d: Locate(%d) = %+v outside element span", step, pos, loc)
				}
				if loc.Remainder != pos-start {
					t.Fatalf("step %d: Locate(%d) remainder = %d, want %d", step, pos, loc.Remainder, pos-start)
				}
			}
		}
		checkConsistent(t, idx, model)
	}
}
