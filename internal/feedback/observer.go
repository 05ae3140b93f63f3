package feedback

import "qexpand/internal/domain"

// Observer receives progress notifications from a Loop. Calls are made
// synchronously from the loop goroutine.
type Observer interface {
	RoundStarted(round int, query []string, target float64)
	ResultJudged(round int, req domain.JudgeRequest, relevant bool)
	RoundFinished(r Round, target float64)
}

type nopObserver struct{}

func (nopObserver) RoundStarted(int, []string, float64) {}
func (nopObserver) ResultJudged(int, domain.JudgeRequest, bool) {}
func (nopObserver) RoundFinished(Round, float64) {}
