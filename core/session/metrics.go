package session

import "github.com/prometheus/client_golang/prometheus"

// Refresh outcomes recorded by Metrics. RefreshCanceled means the caller
// stopped waiting before the outcome was known.
const (
	RefreshSuccess  = "success"
	RefreshFailure  = "failure"
	RefreshTimeout  = "timeout"
	RefreshSkipped  = "skipped"
	RefreshCanceled = "canceled"
)

// Metrics holds the session counters. A nil *Metrics records nothing.
type Metrics struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	forcedLogouts *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		forcedLogouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "System initiated logouts by reason.",
		}, []string{"reason"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.logins, m.refreshes, m.forcedLogouts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) refresh(outcome string) {
	if m != nil {
		m.refreshes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) forcedLogout(reason string) {
	if m != nil {
		m.forcedLogouts.WithLabelValues(reason).Inc()
	}
}
