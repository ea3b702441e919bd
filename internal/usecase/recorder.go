package usecase

import "time"

// Recorder receives monitoring measurements. metrics.Monitor implements it.
type Recorder interface {
	CycleFinished(due int, duration time.Duration, err error)
	ItemProcessed(outcome, stage string)
	FetchObserved(duration time.Duration, err error)
	NotificationSent(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) CycleFinished(int, time.Duration, error) {}
func (nopRecorder) ItemProcessed(string, string)            {}
func (nopRecorder) FetchObserved(time.Duration, error)      {}
func (nopRecorder) NotificationSent(bool)                   {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
