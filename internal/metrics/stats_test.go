package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(8, 20*time.Millisecond, StepMetrics{Step: 0, DisLoss: 1.2, AdvLoss: 0.9})
	w.Record(8, 30*time.Millisecond, StepMetrics{Step: 1, DisLoss: 1.1, DisAcc: 0.5, AdvLoss: 0.8, AdvAcc: 0.25})

	snap := w.Snapshot()
	if math.Abs(snap.StepsPerSec-40.0) > 0.01 {
		t.Fatalf("unexpected steps/sec %.2f", snap.StepsPerSec)
	}
	if math.Abs(snap.ImagesPerSec-320.0) > 0.1 {
		t.Fatalf("unexpected images/sec %.2f", snap.ImagesPerSec)
	}
	if snap.Last.Step != 1 || snap.Last.AdvAcc != 0.25 {
		t.Fatalf("expected last record to survive, got %+v", snap.Last)
	}
	if w.steps != 0 || w.samples != 0 {
		t.Fatal("window was not reset")
	}
}
