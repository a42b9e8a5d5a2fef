package scraper

import (
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

func TestHealthBookRetiresOnErrors(t *testing.T) {
	b := newHealthBook()
	id := proto.TargetTargetID("tab-1")

	for i := 0; i < 2; i++ {
		if b.finish(id, false) {
			t.Fatalf("retired after %d failures", i+1)
		}
	}
	if !b.finish(id, false) {
		t.Error("third failure should retire the tab")
	}
	if _, ok := b.tabs[id]; ok {
		t.Error("retired tab should be forgotten")
	}
}

func TestHealthBookSuccessHeals(t *testing.T) {
	b := newHealthBook()
	id := proto.TargetTargetID("tab-1")

	b.finish(id, false)
	b.finish(id, false)
	b.finish(id, true)
	b.finish(id, true)
	if b.finish(id, false) {
		t.Error("successes should have lowered the score below the threshold")
	}
	if got := b.tabs[id].errScore; got != 2 {
		t.Errorf("errScore = %v, want 2", got)
	}
}

func TestHealthBookRetiresOnUseAndAge(t *testing.T) {
	b := newHealthBook()
	id := proto.TargetTargetID("busy")
	retired := false
	for i := 0; i < retireUses && !retired; i++ {
		retired = b.finish(id, true)
	}
	if !retired {
		t.Error("tab should retire after the use limit")
	}

	now := time.Now()
	b.now = func() time.Time { return now }
	old := proto.TargetTargetID("old")
	b.finish(old, true)
	now = now.Add(retireAge)
	if !b.finish(old, true) {
		t.Error("tab should retire after the age limit")
	}

	b.finish("gone", true)
	b.forget("gone")
	if _, ok := b.tabs["gone"]; ok {
		t.Error("forget did not remove the tab")
	}
}
