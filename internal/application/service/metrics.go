package service

const (
	OutcomeCompleted = "completed"
	OutcomeNoOp      = "noop"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

type Metrics interface {
	ObserveGoalMerge(added int)
	ObserveSkillCompletion(outcome string, created int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveGoalMerge(int) {}
func (nopMetrics) ObserveSkillCompletion(string, int) {}

// NopMetrics records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
