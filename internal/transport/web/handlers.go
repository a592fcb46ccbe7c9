package web

import (
	"embed"
	"errors"
	"html"
	"html/template"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sandevgo/verifid/internal/config"
	"github.com/sandevgo/verifid/internal/core"
	"github.com/sandevgo/verifid/pkg/log"
)

//go:embed templates/*.html
var templateFS embed.FS

type handler struct {
	cfg       *config.AppConfig
	engine    QuestionEngine
	records   RecordSource
	templates *template.Template
	sanitizer *bluemonday.Policy
}

func newHandler(cfg *config.AppConfig, engine QuestionEngine, records RecordSource) *handler {
	return &handler{
		cfg:       cfg,
		engine:    engine,
		records:   records,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		// Submitted answers are echoed back on the result page; the
		// displayed copy has all markup stripped.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type questionsData struct {
	UserID    string
	UserName  string
	Questions []core.Question
}

type resultData struct {
	Status  string
	Message string
	Success bool
	Results []core.GradedAnswer
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", nil)
}

func (h *handler) verifyID(w http.ResponseWriter, r *http.Request) {
	inputID := strings.TrimSpace(r.FormValue("employee_id"))

	record, err := h.records.Lookup(inputID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			h.render(w, r, "result.html", resultData{
				Status:  "Not Found",
				Message: "Employee ID not found. Please go back and try again.",
			})
			return
		}
		log.FromCtx(r.Context()).Error().Err(err).Msg("record lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	userID := record.UserID()
	questions := h.engine.Ask(r.Context(), userID, record, h.cfg.QuestionCount)
	if len(questions) == 0 {
		h.render(w, r, "result.html", resultData{
			Status:  "Insufficient Data",
			Message: "Not enough data to generate verification questions.",
		})
		return
	}

	h.render(w, r, "questions.html", questionsData{
		UserID:    userID,
		UserName:  record.DisplayName(),
		Questions: questions,
	})
}

func (h *handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	userID := strings.TrimSpace(r.FormValue("user_id"))
	fields := r.Form["fields"]
	templates := r.Form["templates"]
	answers := r.Form["answers"]

	record, err := h.records.Lookup(userID)
	if err != nil {
		h.render(w, r, "result.html", resultData{
			Status:  "Record Not Found",
			Message: "We could not locate your record. Please try again.",
		})
		return
	}

	if len(fields) != len(templates) || len(fields) != len(answers) {
		http.Error(w, "mismatched form arrays", http.StatusBadRequest)
		return
	}

	allCorrect := len(fields) > 0
	results := make([]core.GradedAnswer, 0, len(fields))
	for i := range fields {
		graded := h.engine.GradeAndLearn(r.Context(), userID, fields[i], templates[i], answers[i],
			[]string{record[fields[i]]})
		// Grading and the interaction log see the answer exactly as typed.
		// Only the echoed copy is stripped of markup; unescaping afterwards
		// keeps plain text like "R&D" from being escaped twice when the
		// template renders it.
		graded.Answer = html.UnescapeString(h.sanitizer.Sanitize(graded.Answer))
		if !graded.Correct {
			allCorrect = false
		}
		results = append(results, graded)
	}

	data := resultData{
		Status:  "Failure",
		Message: "Some answers were incorrect.",
		Success: allCorrect,
		Results: results,
	}
	if allCorrect {
		data.Status = "Success"
		data.Message = "You passed all checks!"
	}
	h.render(w, r, "result.html", data)
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}
