package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/khoahotran/skillora/internal/application/service"
)

type PrometheusMetrics struct {
	goalMerges          *prometheus.CounterVec
	goalsAdded          prometheus.Counter
	skillCompletions    *prometheus.CounterVec
	achievementsCreated prometheus.Counter
}

// NewPrometheusMetrics registers the engine counters on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		goalMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillora_goal_merges_total",
			Help: "Goal merge calls, by whether any goal was added.",
		}, []string{"result"}),
		goalsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillora_goals_added_total",
			Help: "Goals appended by merges.",
		}),
		skillCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillora_skill_completions_total",
			Help: "Skill completion cascades, by outcome.",
		}, []string{"outcome"}),
		achievementsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillora_achievements_created_total",
			Help: "Achievement records created by skill completion.",
		}),
	}
	reg.MustRegister(m.goalMerges, m.goalsAdded, m.skillCompletions, m.achievementsCreated)
	return m
}

func (m *PrometheusMetrics) ObserveGoalMerge(added int) {
	if added == 0 {
		m.goalMerges.WithLabelValues("noop").Inc()
		return
	}
	m.goalMerges.WithLabelValues("added").Inc()
	m.goalsAdded.Add(float64(added))
}

func (m *PrometheusMetrics) ObserveSkillCompletion(outcome string, created int) {
	m.skillCompletions.WithLabelValues(outcome).Inc()
	if created > 0 {
		m.achievementsCreated.Add(float64(created))
	}
}

var _ service.Metrics = (*PrometheusMetrics)(nil)
