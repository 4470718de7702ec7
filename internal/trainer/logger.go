package trainer

import (
	"log"
	"time"

	"ganforge/internal/metrics"
)

// StepLogger receives one record per training step. The loop is decoupled
// from any output medium through this seam.
type StepLogger interface {
	Record(elapsed time.Duration, m metrics.StepMetrics)
}

// LogSink writes key=value step records through the standard logger, plus a
// throughput summary every summaryEvery steps when that is positive.
type LogSink struct {
	summaryEvery int
	batchSize    int
	window       metrics.Window
}

// NewLogSink returns a sink summarizing throughput every summaryEvery
// steps; zero disables summaries.
func NewLogSink(summaryEvery, batchSize int) *LogSink {
	return &LogSink{summaryEvery: summaryEvery, batchSize: batchSize}
}

// Record implements StepLogger.
func (s *LogSink) Record(elapsed time.Duration, m metrics.StepMetrics) {
	log.Printf("step=%d dis_loss=%.4f dis_acc=%.4f adv_loss=%.4f adv_acc=%.4f",
		m.Step, m.DisLoss, m.DisAcc, m.AdvLoss, m.AdvAcc)

	s.window.Record(s.batchSize, elapsed, m)
	if s.summaryEvery > 0 && (m.Step+1)%s.summaryEvery == 0 {
		snap := s.window.Snapshot()
		log.Printf("summary step=%d steps_per_sec=%.2f images_per_sec=%.1f",
			m.Step, snap.StepsPerSec, snap.ImagesPerSec)
	}
}
