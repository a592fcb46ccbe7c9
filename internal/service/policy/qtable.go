// Package policy holds the learned selection state and the field/template
// ordering strategies built on top of it.
package policy

import (
	"sync"

	"github.com/sandevgo/verifid/internal/core"
)

type qKey struct {
	userID   string
	field    string
	template string
}

type qEntry struct {
	value float64
	count int
}

// QTable is the per-(user, field, template) running reward score. Values are
// learned per user; nothing is shared across users. Unseen triples score 0.
type QTable struct {
	mu     sync.RWMutex
	values map[qKey]qEntry
}

func NewQTable() *QTable {
	return &QTable{values: make(map[qKey]qEntry)}
}

// Update folds a reward into the running average for the triple.
func (t *QTable) Update(userID, field, template string, reward float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := qKey{userID: userID, field: field, template: template}
	e := t.values[k]
	e.count++
	e.value += (reward - e.value) / float64(e.count)
	t.values[k] = e
}

func (t *QTable) Value(userID, field, template string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[qKey{userID: userID, field: field, template: template}].value
}

// Retrain rebuilds the table from the full interaction log, replacing all
// online state. Replaying the same log twice yields the same table, so the
// operation is safe to repeat at every process start.
func (t *QTable) Retrain(interactions []core.Interaction) {
	values := make(map[qKey]qEntry)
	for _, it := range interactions {
		reward := -1.0
		if it.Success {
			reward = 1.0
		}
		k := qKey{userID: it.UserID, field: it.Field, template: it.Template}
		e := values[k]
		e.count++
		e.value += (reward - e.value) / float64(e.count)
		values[k] = e
	}

	t.mu.Lock()
	t.values = values
	t.mu.Unlock()
}

// FieldValue is the mean score over every observed template of a field for
// one user, 0 when nothing has been observed yet.
func (t *QTable) FieldValue(userID, field string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var sum float64
	var n int
	for k, e := range t.values {
		if k.userID == userID && k.field == field {
			sum += e.value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
