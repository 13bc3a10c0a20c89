package output

import "whatsapp-checker/internal/domain"

// Metrics interface - Output port
// Receives diagnostics from the controller and the query queue.
type Metrics interface {
	SetSessionState(state domain.SessionState, ready bool)
	IncReconnects()
	SetQueue(waiting, inFlight int)
	ObserveQuery(outcome string)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) SetSessionState(domain.SessionState, bool) {}
func (NopMetrics) IncReconnects()                            {}
func (NopMetrics) SetQueue(int, int)                         {}
func (NopMetrics) ObserveQuery(string)                       {}
