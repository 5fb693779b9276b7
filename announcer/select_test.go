package announcer

import (
	"testing"

	"github.com/frtsoysal/4castytwitterbot/gamma"
)

func TestSelectBest_MaxVolumeWins(t *testing.T) {
	events := []gamma.Event{
		{ID: "a", Volume: 10},
		{ID: "b", Volume: 50},
		{ID: "c", Volume: 30},
	}
	best, ok := selectBest(events)
	if !ok {
		t.Fatal("expected a selection")
	}
	if best.ID != "b" {
		t.Errorf("selected %s, want b", best.ID)
	}
}

func TestSelectBest_Empty(t *testing.T) {
	if _, ok := selectBest(nil); ok {
		t.Error("empty input should select nothing")
	}
}

func TestSelectBest_TieKeepsFirst(t *testing.T) {
	events := []gamma.Event{
		{ID: "first", Volume: 100},
		{ID: "second", Volume: 100},
	}
	best, _ := selectBest(events)
	if best.ID != "first" {
		t.Errorf("tie should keep the first event, got %s", best.ID)
	}
}

func TestSelectBest_NegativeVolumeTreatedAsZero(t *testing.T) {
	events := []gamma.Event{
		{ID: "neg", Volume: -500},
		{ID: "zero", Volume: 0},
	}
	best, _ := selectBest(events)
	if best.ID != "neg" {
		t.Errorf("negative and zero volume should tie on zero, keeping the first; got %s", best.ID)
	}
}
