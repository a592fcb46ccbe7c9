package engine

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/internal/service/policy"
	"github.com/sandevgo/verifid/internal/service/session"
	"github.com/sandevgo/verifid/internal/templatebank"
)

type mockHistory struct {
	asked    map[string]map[core.AskedPair]struct{}
	attempts [][]core.Question
	loadErr  error
	saveErr  error
}

func newMockHistory() *mockHistory {
	return &mockHistory{asked: make(map[string]map[core.AskedPair]struct{})}
}

func (m *mockHistory) PreviouslyAsked(ctx context.Context, userID string) (map[core.AskedPair]struct{}, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[core.AskedPair]struct{})
	for pair := range m.asked[userID] {
		out[pair] = struct{}{}
	}
	return out, nil
}

func (m *mockHistory) RecordAttempt(ctx context.Context, record core.Record, questions []core.Question) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	userID := record.UserID()
	if m.asked[userID] == nil {
		m.asked[userID] = make(map[core.AskedPair]struct{})
	}
	for _, q := range questions {
		m.asked[userID][core.AskedPair{Field: q.Field, Text: q.Text}] = struct{}{}
	}
	m.attempts = append(m.attempts, questions)
	return nil
}

type mockInteractions struct {
	entries []core.Interaction
	addErr  error
	getErr  error
}

func (m *mockInteractions) AddInteraction(ctx context.Context, it core.Interaction) error {
	if m.addErr != nil {
		return m.addErr
	}
	it.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, it)
	return nil
}

func (m *mockInteractions) GetInteractions(ctx context.Context) ([]core.Interaction, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries, nil
}

func writeBank(t *testing.T, content string) *templatebank.Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates_bank.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write bank file: %v", err)
	}
	return templatebank.New(path)
}

type testEngine struct {
	*Engine
	history      *mockHistory
	interactions *mockInteractions
	qtable       *policy.QTable
}

func newTestEngine(t *testing.T, bankJSON string) *testEngine {
	t.Helper()
	history := newMockHistory()
	interactions := &mockInteractions{}
	qtable := policy.NewQTable()
	model := policy.NewSuccessModel()
	ordering := policy.NewShuffle(rand.New(rand.NewSource(1)))

	return &testEngine{
		Engine:       NewEngine(writeBank(t, bankJSON), history, interactions, session.NewMemory(), qtable, model, ordering),
		history:      history,
		interactions: interactions,
		qtable:       qtable,
	}
}

const twoFieldBank = `{
	"Designation": ["What is your designation, {value}?"],
	"Location": ["Where are you located, {value}?"]
}`

func testRecord() core.Record {
	return core.Record{
		core.FieldEmployeeID: "7",
		"Designation":        "Engineer",
		"Location":           "NY",
	}
}

func TestAsk_CoversEligibleFields(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)

	questions := e.Ask(context.Background(), "7", testRecord(), 2)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	byField := make(map[string]string)
	for _, q := range questions {
		byField[q.Field] = q.Text
	}
	if !strings.Contains(byField["Designation"], "Engineer") {
		t.Errorf("Designation question %q does not contain the value", byField["Designation"])
	}
	if !strings.Contains(byField["Location"], "NY") {
		t.Errorf("Location question %q does not contain the value", byField["Location"])
	}
}

func TestAsk_NoDuplicateFieldsInOneCall(t *testing.T) {
	e := newTestEngine(t, `{
		"Designation": ["What is your designation, {value}?", "Is {value} your job title?"]
	}`)

	questions := e.Ask(context.Background(), "7", testRecord(), 3)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question for a single eligible field, got %d", len(questions))
	}
}

func TestAsk_SkipsIdentifierAndEmptyFields(t *testing.T) {
	e := newTestEngine(t, `{
		"Employee Name": ["Is your name {value}?"],
		"Designation": ["What is your designation, {value}?"],
		"Location": ["Where are you located, {value}?"]
	}`)

	record := core.Record{
		core.FieldEmployeeID:   "7",
		core.FieldEmployeeName: "Alice",
		"Designation":          "Engineer",
		"Location":             "   ",
	}

	questions := e.Ask(context.Background(), "7", record, 3)
	if len(questions) != 1 || questions[0].Field != "Designation" {
		t.Errorf("expected only the Designation question, got %v", questions)
	}
}

func TestAsk_RecordsAttempt(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)

	e.Ask(context.Background(), "7", testRecord(), 2)
	if len(e.history.attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(e.history.attempts))
	}
	if len(e.history.attempts[0]) != 2 {
		t.Errorf("recorded attempt has %d questions, want 2", len(e.history.attempts[0]))
	}
}

func TestAsk_DedupAgainstHistory(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	first := e.Ask(ctx, "7", testRecord(), 2)
	if len(first) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(first))
	}

	// Every template is now exhausted for this user; fields are skipped
	// rather than repeating an already-asked question.
	second := e.Ask(ctx, "7", testRecord(), 2)
	if len(second) != 0 {
		t.Errorf("expected no questions after exhausting the bank, got %v", second)
	}
}

func TestAsk_DedupIsPerUser(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	e.Ask(ctx, "7", testRecord(), 2)

	other := core.Record{core.FieldEmployeeID: "8", "Designation": "Engineer", "Location": "NY"}
	questions := e.Ask(ctx, "8", other, 2)
	if len(questions) != 2 {
		t.Errorf("another user must not inherit the dedup set, got %d questions", len(questions))
	}
}

func TestAsk_SpreadsFieldsAcrossCalls(t *testing.T) {
	e := newTestEngine(t, `{
		"Designation": ["What is your designation, {value}?", "Is {value} your job title?", "Does your badge say {value}?", "Were you hired as {value}?"],
		"Location": ["Where are you located, {value}?", "Is {value} your office?", "Do you work from {value}?", "Is your desk in {value}?"],
		"Email": ["Is {value} your email?", "Do you receive mail at {value}?", "Is your inbox {value}?", "Was {value} assigned to you?"],
		"Manager Name": ["Is {value} your manager?", "Do you report to {value}?", "Is your lead {value}?", "Does {value} approve your leave?"]
	}`)
	ctx := context.Background()

	record := core.Record{
		core.FieldEmployeeID: "7",
		"Designation":        "Engineer",
		"Location":           "NY",
		"Email":              "a@b.c",
		"Manager Name":       "Dana",
	}

	var fields []string
	for i := 0; i < 4; i++ {
		questions := e.Ask(ctx, "7", record, 1)
		if len(questions) != 1 {
			t.Fatalf("call %d: expected 1 question, got %d", i, len(questions))
		}
		fields = append(fields, questions[0].Field)
	}

	// With 4 eligible fields and a session window of 3, no field may repeat
	// within any 3-call span.
	for i := 1; i < len(fields); i++ {
		for j := i - 3; j < i; j++ {
			if j >= 0 && fields[j] == fields[i] {
				t.Errorf("field %q repeated within the session window: %v", fields[i], fields)
			}
		}
	}
}

func TestAsk_SessionResetKeepsServing(t *testing.T) {
	e := newTestEngine(t, `{
		"Designation": ["Q{value}1?", "Q{value}2?", "Q{value}3?", "Q{value}4?"]
	}`)
	ctx := context.Background()

	record := core.Record{core.FieldEmployeeID: "7", "Designation": "Engineer"}

	// With a single eligible field the session window fills immediately; the
	// fallback reset must keep questions flowing while templates remain.
	for i := 0; i < 4; i++ {
		questions := e.Ask(ctx, "7", record, 1)
		if len(questions) != 1 {
			t.Fatalf("call %d: expected 1 question, got %d", i, len(questions))
		}
	}
}

func TestAsk_BankUnavailable(t *testing.T) {
	history := newMockHistory()
	e := NewEngine(
		templatebank.New(filepath.Join(t.TempDir(), "missing.json")),
		history,
		&mockInteractions{},
		session.NewMemory(),
		policy.NewQTable(),
		policy.NewSuccessModel(),
		policy.NewShuffle(rand.New(rand.NewSource(1))),
	)

	questions := e.Ask(context.Background(), "7", testRecord(), 3)
	if questions != nil {
		t.Errorf("expected no questions on bank failure, got %v", questions)
	}
	if len(history.attempts) != 0 {
		t.Error("no attempt should be recorded when nothing was asked")
	}
}

func TestAsk_HistoryReadFailureDegrades(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	e.history.loadErr = errors.New("disk gone")

	questions := e.Ask(context.Background(), "7", testRecord(), 2)
	if len(questions) != 2 {
		t.Errorf("expected questions despite history read failure, got %d", len(questions))
	}
}

func TestGradeAndLearn_Normalization(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	tests := []struct {
		name    string
		answer  string
		correct []string
		want    bool
	}{
		{name: "case_insensitive", answer: "engineer", correct: []string{"Engineer"}, want: true},
		{name: "trims_both_sides", answer: "Alice", correct: []string{"alice "}, want: true},
		{name: "any_correct_value", answer: "ny", correct: []string{"New York", "NY"}, want: true},
		{name: "wrong_answer", answer: "plumber", correct: []string{"Engineer"}, want: false},
		{name: "no_partial_credit", answer: "Engin", correct: []string{"Engineer"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.GradeAndLearn(ctx, "7", "Designation", "What is your designation, {value}?", tt.answer, tt.correct)
			if got.Correct != tt.want {
				t.Errorf("Correct = %v, want %v", got.Correct, tt.want)
			}
		})
	}
}

func TestGradeAndLearn_Deterministic(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	a := e.GradeAndLearn(ctx, "7", "Designation", "{value}?", "engineer", []string{"Engineer"})
	b := e.GradeAndLearn(ctx, "7", "Designation", "{value}?", "engineer", []string{"Engineer"})
	if a.Correct != b.Correct {
		t.Error("grading the same input twice must yield the same result")
	}
}

func TestGradeAndLearn_UpdatesRewardAndLog(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	e.GradeAndLearn(ctx, "7", "Designation", "{value}?", "Engineer", []string{"Engineer"})
	if got := e.qtable.Value("7", "Designation", "{value}?"); got != 1 {
		t.Errorf("q-value after success = %v, want 1", got)
	}

	e.GradeAndLearn(ctx, "7", "Location", "{value}?", "LA", []string{"NY"})
	if got := e.qtable.Value("7", "Location", "{value}?"); got != -1 {
		t.Errorf("q-value after failure = %v, want -1", got)
	}

	if len(e.interactions.entries) != 2 {
		t.Fatalf("expected 2 interaction log entries, got %d", len(e.interactions.entries))
	}
	if !e.interactions.entries[0].Success || e.interactions.entries[1].Success {
		t.Error("interaction log success flags do not match grading")
	}
}

func TestGradeAndLearn_RendersQuestionWithValue(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)

	got := e.GradeAndLearn(context.Background(), "7", "Designation",
		"What is your designation, {value}?", "engineer", []string{"Engineer"})
	if got.Question != "What is your designation, Engineer?" {
		t.Errorf("Question = %q", got.Question)
	}
}

func TestRetrain_MatchesOnlineUpdates(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	ctx := context.Background()

	e.GradeAndLearn(ctx, "7", "Designation", "{value}?", "Engineer", []string{"Engineer"})
	e.GradeAndLearn(ctx, "7", "Designation", "{value}?", "plumber", []string{"Engineer"})

	online := e.qtable.Value("7", "Designation", "{value}?")

	// A fresh engine replaying the same log must land on the same value.
	fresh := policy.NewQTable()
	rebuilt := NewEngine(writeBank(t, twoFieldBank), newMockHistory(), e.interactions,
		session.NewMemory(), fresh, policy.NewSuccessModel(), policy.NewShuffle(rand.New(rand.NewSource(1))))
	if err := rebuilt.Retrain(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fresh.Value("7", "Designation", "{value}?"); got != online {
		t.Errorf("retrained value = %v, online value = %v", got, online)
	}
}

func TestRetrain_ReadFailure(t *testing.T) {
	e := newTestEngine(t, twoFieldBank)
	e.interactions.getErr = errors.New("disk gone")

	if err := e.Retrain(context.Background()); err == nil {
		t.Error("expected error when the interaction log cannot be read")
	}
}
