package policy

import (
	"sync"

	"github.com/sandevgo/verifid/internal/core"
)

type ftKey struct {
	field    string
	template string
}

type ftStats struct {
	successes int
	total     int
}

// SuccessModel is the supervised component: per (field, template) success
// rates fitted from the whole interaction log. It is user-agnostic and acts
// as a prior for triples the per-user QTable has not observed yet.
type SuccessModel struct {
	mu    sync.RWMutex
	stats map[ftKey]ftStats
}

func NewSuccessModel() *SuccessModel {
	return &SuccessModel{stats: make(map[ftKey]ftStats)}
}

// Train is a full refit; it replaces any previous state.
func (m *SuccessModel) Train(interactions []core.Interaction) {
	stats := make(map[ftKey]ftStats)
	for _, it := range interactions {
		k := ftKey{field: it.Field, template: it.Template}
		s := stats[k]
		s.total++
		if it.Success {
			s.successes++
		}
		stats[k] = s
	}

	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()
}

// Rate returns the observed success rate, or 0.5 when nothing is known.
func (m *SuccessModel) Rate(field, template string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stats[ftKey{field: field, template: template}]
	if !ok || s.total == 0 {
		return 0.5
	}
	return float64(s.successes) / float64(s.total)
}

// FieldRate averages the known template rates of a field, 0.5 when unknown.
func (m *SuccessModel) FieldRate(field string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum float64
	var n int
	for k, s := range m.stats {
		if k.field == field && s.total > 0 {
			sum += float64(s.successes) / float64(s.total)
			n++
		}
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}
