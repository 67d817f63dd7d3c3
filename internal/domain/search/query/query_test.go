package query

import (
	"testing"

	"github.com/kailas-cloud/citrination/internal/domain/search/kind"
)

func TestWindowSpan(t *testing.T) {
	tests := []struct {
		name string
		w    Window
		want int
	}{
		{"both absent", Window{}, 0},
		{"from only", Window{FromIndex: Int(7)}, 7},
		{"size only", Window{Size: Int(5)}, 5},
		{"both", Window{FromIndex: Int(49998), Size: Int(1)}, 49999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Span(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWithFromIndex_LeavesOriginal(t *testing.T) {
	orig := PifSystemReturningQuery{Returning: Returning{FromIndex: Int(3), Size: Int(10)}}

	sub := orig.WithFromIndex(13)

	if *orig.FromIndex != 3 {
		t.Errorf("original from_index changed to %d", *orig.FromIndex)
	}
	if *sub.FromIndex != 13 {
		t.Errorf("expected sub from_index 13, got %d", *sub.FromIndex)
	}
	if sub.Size != orig.Size {
		t.Error("expected size to be carried over")
	}

	again := sub.WithFromIndex(23)
	if *sub.FromIndex != 13 {
		t.Errorf("previous sub-query from_index changed to %d", *sub.FromIndex)
	}
	if *again.FromIndex != 23 {
		t.Errorf("expected 23, got %d", *again.FromIndex)
	}
}

func TestDatasetWithFromIndex_NilOriginal(t *testing.T) {
	orig := DatasetReturningQuery{CountPifs: Bool(true)}
	sub := orig.WithFromIndex(0)
	if orig.FromIndex != nil {
		t.Error("original from_index must stay absent")
	}
	if sub.FromIndex == nil || *sub.FromIndex != 0 {
		t.Error("expected sub from_index 0")
	}
}

func TestKinds(t *testing.T) {
	if (PifSystemReturningQuery{}).Kind() != kind.PifSystem {
		t.Error("pif query must be pif_system kind")
	}
	if (DatasetReturningQuery{}).Kind() != kind.Dataset {
		t.Error("dataset query must be dataset kind")
	}
}
