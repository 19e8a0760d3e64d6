package metrics

import "time"

// ResultLabel enumerates outcome labels for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// ResultOf maps an error to a result label.
func ResultOf(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

// Recorder is the minimal interface the sync engine uses for metrics.
type Recorder interface {
	IncSlotTransition(slot, state string)
	IncSuperseded(slot string)
	ObserveRemoteDuration(endpoint string, d time.Duration, result ResultLabel)
	IncCacheWrite(kind string, result ResultLabel)
	SetConsecutiveFailures(n int)
}

// NoopRecorder is the default.
type NoopRecorder struct{}

func (NoopRecorder) IncSlotTransition(string, string) {}
func (NoopRecorder) IncSuperseded(string) {}
func (NoopRecorder) ObserveRemoteDuration(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncCacheWrite(string, ResultLabel) {}
func (NoopRecorder) SetConsecutiveFailures(int) {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
