package polyvoice_test

import (
	"math"
	"testing"

	"github.com/vsariola/polyvoice"
)

func TestUnisonOffsets(t *testing.T) {
	tests := []struct {
		count  int
		detune float64
		want   []float64
	}{
		{1, 1, []float64{0}},
		{2, 1, []float64{-50, 50}},
		{3, 1, []float64{-50, 0, 50}},
		{4, 1, []float64{-50, -50.0 / 3, 50.0 / 3, 50}},
		{5, 0.5, []float64{-25, -12.5, 0, 12.5, 25}},
		{4, 0, []float64{0, 0, 0, 0}},
		{0, 1, []float64{0}},
		{100, 1, []float64{-50, -50.0 * 5 / 7, -50.0 * 3 / 7, -50.0 / 7, 50.0 / 7, 50.0 * 3 / 7, 50.0 * 5 / 7, 50}},
		{3, 2, []float64{-50, 0, 50}},
	}
	for _, tt := range tests {
		var dst [polyvoice.MaxUnison]float64
		got := polyvoice.UnisonOffsets(tt.count, tt.detune, &dst)
		if len(got) != len(tt.want) {
			t.Errorf("UnisonOffsets(%d, %v) returned %d offsets, want %d", tt.count, tt.detune, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.want[i]) > 1e-9 {
				t.Errorf("UnisonOffsets(%d, %v) = %v, want %v", tt.count, tt.detune, got, tt.want)
				break
			}
		}
		for i := range got {
			if got[i] != -got[len(got)-1-i] {
				t.Errorf("UnisonOffsets(%d, %v) = %v is not symmetric", tt.count, tt.detune, got)
				break
			}
		}
	}
}

func TestUnisonOffsetsDoesNotAllocate(t *testing.T) {
	var dst [polyvoice.MaxUnison]float64
	if n := testing.AllocsPerRun(100, func() { polyvoice.UnisonOffsets(7, 0.3, &dst) }); n != 0 {
		t.Fatalf("UnisonOffsets allocated %v times", n)
	}
}
