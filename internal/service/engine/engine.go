// Package engine implements the adaptive question selection and feedback
// loop: picking which fields and templates to ask a user about, grading
// free-text answers against the record, and feeding rewards back into the
// selection policy.
package engine

import (
	"context"
	"strings"

	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/internal/service/policy"
	"github.com/sandevgo/verifid/internal/service/session"
	"github.com/sandevgo/verifid/internal/templatebank"
	"github.com/sandevgo/verifid/pkg/log"
)

const DefaultQuestionCount = 3

const (
	rewardSuccess = 1.0
	rewardFailure = -1.0
)

type Engine struct {
	bank         *templatebank.Bank
	history      core.HistoryRepository
	interactions core.InteractionRepository
	sessions     *session.Memory
	qtable       *policy.QTable
	model        *policy.SuccessModel
	ordering     policy.Ordering
}

func NewEngine(
	bank *templatebank.Bank,
	history core.HistoryRepository,
	interactions core.InteractionRepository,
	sessions *session.Memory,
	qtable *policy.QTable,
	model *policy.SuccessModel,
	ordering policy.Ordering,
) *Engine {
	return &Engine{
		bank:         bank,
		history:      history,
		interactions: interactions,
		sessions:     sessions,
		qtable:       qtable,
		model:        model,
		ordering:     ordering,
	}
}

// Ask selects up to k questions for the record. An empty result means the
// record has too little data (or the bank is unusable) and is not an error;
// callers present it as a distinct "insufficient data" outcome. Issued
// questions are recorded to the history store here, not by transports, so
// the dedup invariant cannot depend on every caller remembering to do it.
func (e *Engine) Ask(ctx context.Context, userID string, record core.Record, k int) []core.Question {
	logger := log.FromCtx(ctx)
	if k <= 0 {
		k = DefaultQuestionCount
	}

	bank, err := e.bank.All()
	if err != nil {
		logger.Warn().Err(err).Msg("template bank unavailable, no questions generated")
		return nil
	}

	var eligible []string
	for _, field := range record.EligibleFields() {
		if len(bank[field]) > 0 {
			eligible = append(eligible, field)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	asked, err := e.history.PreviouslyAsked(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("employee_id", userID).Msg("failed to load question history, dedup degraded")
		asked = map[core.AskedPair]struct{}{}
	}

	recent := make(map[string]struct{})
	for _, field := range e.sessions.Recent(userID) {
		recent[field] = struct{}{}
	}

	candidates := make([]string, 0, len(eligible))
	for _, field := range eligible {
		if _, ok := recent[field]; !ok {
			candidates = append(candidates, field)
		}
	}
	// Every eligible field was asked recently: reset the session window so
	// the user can still be served.
	if len(candidates) == 0 {
		e.sessions.Reset(userID)
		candidates = eligible
	}

	var questions []core.Question
	for _, field := range e.ordering.OrderFields(userID, candidates) {
		for _, tpl := range e.ordering.OrderTemplates(userID, field, bank[field]) {
			text := templatebank.Render(tpl, record[field])
			if _, seen := asked[core.AskedPair{Field: field, Text: text}]; seen {
				continue
			}
			questions = append(questions, core.Question{Field: field, Template: tpl, Text: text})
			break
		}
		if len(questions) >= k {
			break
		}
	}

	for _, q := range questions {
		e.sessions.Touch(userID, q.Field)
	}

	if len(questions) > 0 {
		if err := e.history.RecordAttempt(ctx, record, questions); err != nil {
			logger.Warn().Err(err).Str("employee_id", userID).Msg("failed to record asked questions")
		}
	}

	logger.Debug().Str("employee_id", userID).Int("count", len(questions)).Msg("questions selected")
	return questions
}

// GradeAndLearn grades one submitted answer, applies the reward to the
// learned table and appends the outcome to the interaction log. Grading is
// case-insensitive and trims whitespace on both sides.
func (e *Engine) GradeAndLearn(ctx context.Context, userID, field, template, answer string, correctValues []string) core.GradedAnswer {
	normalized := make([]string, len(correctValues))
	for i, v := range correctValues {
		normalized[i] = normalize(v)
	}

	success := false
	for _, v := range normalized {
		if normalize(answer) == v {
			success = true
			break
		}
	}

	reward := rewardFailure
	if success {
		reward = rewardSuccess
	}
	e.qtable.Update(userID, field, template, reward)

	err := e.interactions.AddInteraction(ctx, core.Interaction{
		UserID:         userID,
		Field:          field,
		Template:       template,
		Answer:         answer,
		CorrectAnswers: normalized,
		Success:        success,
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("employee_id", userID).Msg("failed to log interaction")
	}

	display := ""
	if len(correctValues) > 0 {
		display = correctValues[0]
	}
	return core.GradedAnswer{
		Question:       templatebank.Render(template, display),
		Answer:         answer,
		CorrectAnswers: correctValues,
		Correct:        success,
	}
}

// Retrain refits the learned state from the full interaction log. It is
// called once at startup when prior interactions exist; a failure leaves the
// engine serving questions with whatever state it already has.
func (e *Engine) Retrain(ctx context.Context) error {
	interactions, err := e.interactions.GetInteractions(ctx)
	if err != nil {
		return err
	}

	e.qtable.Retrain(interactions)
	e.model.Train(interactions)

	log.FromCtx(ctx).Info().Int("interactions", len(interactions)).Msg("retrained selection state")
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
