package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/approvalflow/model"
)

// Metrics counts committed engine transitions
type Metrics struct {
	transitions *prometheus.CounterVec
	halts       prometheus.Counter
	conflicts   prometheus.Counter
}

// NewMetrics creates and registers engine collectors
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	ret := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "approvalflow",
			Name:      "transitions_total",
			Help:      "Committed audit actions by action type and resulting request status.",
		}, []string{"action", "status"}),
		halts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "approvalflow",
			Name:      "halts_total",
			Help:      "Advancements halted on a step without assignees.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "approvalflow",
			Name:      "conflicts_total",
			Help:      "Request saves rejected on a stale revision.",
		}),
	}
	if registerer != nil {
		for _, collector := range []prometheus.Collector{ret.transitions, ret.halts, ret.conflicts} {
			if err := registerer.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return ret, nil
}

func (m *Metrics) observe(request *model.Request, actions []*model.Action) {
	if m == nil {
		return
	}
	for _, action := range actions {
		m.transitions.WithLabelValues(string(action.Type), string(request.Status)).Inc()
		if action.Type == model.ActionErrorNoAssignees {
			m.halts.Inc()
		}
	}
}

func (m *Metrics) conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}
