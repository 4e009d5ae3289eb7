package embryo

import "testing"

func TestTimepoint(t *testing.T) {
	codec := DefaultCodec()
	tests := []struct {
		id   SnapshotID
		want int
	}{
		{1, 0},
		{9999, 0},
		{10000, 1},
		{40001, 4},
		{1330300, 133},
	}
	for _, tt := range tests {
		if got := codec.Timepoint(tt.id); got != tt.want {
			t.Errorf("Timepoint(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestIsExterior(t *testing.T) {
	codec := DefaultCodec()
	tests := []struct {
		id   SnapshotID
		want bool
	}{
		{1, true},
		{40001, true},
		{40012, false},
		{1340001, true},
		{1340307, false},
		{2, false},
	}
	for _, tt := range tests {
		if got := codec.IsExterior(tt.id); got != tt.want {
			t.Errorf("IsExterior(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}

	// Agrees with the 1 + tp*10^k formula for arbitrary timepoints.
	for tp := 0; tp < 300; tp += 7 {
		sentinel := SnapshotID(1 + tp*10000)
		if !codec.IsExterior(sentinel) {
			t.Errorf("IsExterior(%d) = false for tp %d sentinel", sentinel, tp)
		}
		if codec.IsExterior(sentinel + 1) {
			t.Errorf("IsExterior(%d) = true for non-sentinel", sentinel+1)
		}
	}
}

func TestSuffix(t *testing.T) {
	codec := DefaultCodec()
	if got := codec.Suffix(1330300); got != 300 {
		t.Errorf("Suffix(1330300) = %d, want 300", got)
	}
}
