package policy

import (
	"math/rand"
	"sort"
	"sync"
)

// Ordering decides the preference order of candidate fields and, per field,
// of its templates, for one user.
type Ordering interface {
	OrderFields(userID string, fields []string) []string
	OrderTemplates(userID, field string, templates []string) []string
}

// Shuffle is the baseline ordering: uniform random, no learned weighting.
// This mirrors the behavior the learned tables historically sat behind.
type Shuffle struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewShuffle(rng *rand.Rand) *Shuffle {
	return &Shuffle{rng: rng}
}

func (s *Shuffle) OrderFields(userID string, fields []string) []string {
	return s.shuffled(fields)
}

func (s *Shuffle) OrderTemplates(userID, field string, templates []string) []string {
	return s.shuffled(templates)
}

func (s *Shuffle) shuffled(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// priorWeight scales the supervised success-rate prior against learned
// per-user rewards, which live in [-1, 1].
const priorWeight = 0.25

// Ranked orders by learned value, falling back to the supervised success-rate
// prior where the per-user table has seen nothing. With probability epsilon a
// call explores with a uniform shuffle instead.
type Ranked struct {
	qtable  *QTable
	model   *SuccessModel
	epsilon float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRanked(qtable *QTable, model *SuccessModel, epsilon float64, rng *rand.Rand) *Ranked {
	return &Ranked{
		qtable:  qtable,
		model:   model,
		epsilon: epsilon,
		rng:     rng,
	}
}

func (r *Ranked) OrderFields(userID string, fields []string) []string {
	return r.order(fields, func(field string) float64 {
		return r.qtable.FieldValue(userID, field) + priorWeight*(2*r.model.FieldRate(field)-1)
	})
}

func (r *Ranked) OrderTemplates(userID, field string, templates []string) []string {
	return r.order(templates, func(template string) float64 {
		return r.qtable.Value(userID, field, template) + priorWeight*(2*r.model.Rate(field, template)-1)
	})
}

func (r *Ranked) order(items []string, score func(string) float64) []string {
	out := make([]string, len(items))
	copy(out, items)

	r.mu.Lock()
	explore := r.rng.Float64() < r.epsilon
	// Shuffle first so equal scores tie-break randomly under the stable sort.
	r.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	r.mu.Unlock()

	if explore {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out
}
