package forms

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/reteach/backend/internal/analysis"
	"github.com/reteach/backend/internal/email"
	"github.com/reteach/backend/internal/models"
	"github.com/reteach/backend/internal/resources"
	"github.com/reteach/backend/internal/studyplan"
)

const notifyTimeout = 30 * time.Second

type Handler struct {
	store    *Store
	plans    *studyplan.Store
	finder   *resources.Finder
	notifier email.Notifier
	gapCfg   analysis.Config
	baseURL  string
}

// NewHandler wires the form endpoints. plans, finder, and notifier may
// each be nil; submissions are still graded, only the follow-up work
// they drive is skipped.
func NewHandler(store *Store, plans *studyplan.Store, finder *resources.Finder, notifier email.Notifier, gapCfg analysis.Config, baseURL string) *Handler {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &Handler{store: store, plans: plans, finder: finder, notifier: notifier, gapCfg: gapCfg, baseURL: baseURL}
}

// ── Handlers ──────────────────────────────────────────────

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}
	if len(req.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "questions are required"})
		return
	}
	for i := range req.Questions {
		if err := req.Questions[i].Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid question",
				Details: err.Error(),
			})
			return
		}
	}

	form, err := h.store.CreateForm(r.Context(), &req)
	if err != nil {
		log.Printf("[forms] create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create form"})
		return
	}

	log.Printf("[forms] created form %s (%d questions)", form.Slug, len(form.Questions))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"form":          form,
		"shareable_url": h.baseURL + "/form/" + form.Slug,
	})
}

// GetForm serves the student-facing view. Answer keys and rationales
// never leave the server here.
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	form, err := h.store.GetBySlug(r.Context(), slug)
	if errors.Is(err, ErrFormNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Form not found"})
		return
	}
	if err != nil {
		log.Printf("[forms] lookup %s failed: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load form"})
		return
	}

	writeJSON(w, http.StatusOK, form.PublicView())
}

// SubmitForm grades a submission server-side, stores it, and kicks off
// gap analysis plus a result email without blocking the response.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	var req models.SubmitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.Answers) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "answers are required"})
		return
	}

	form, err := h.store.GetBySlug(r.Context(), slug)
	if errors.Is(err, ErrFormNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Form not found"})
		return
	}
	if err != nil {
		log.Printf("[forms] lookup %s failed: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load form"})
		return
	}

	result, err := Grade(form, req.Answers)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid answers", Details: err.Error()})
		return
	}

	sub := &models.Submission{
		ID:           uuid.NewString(),
		FormID:       form.ID,
		StudentName:  req.StudentName,
		StudentEmail: req.StudentEmail,
		Answers:      req.Answers,
		Score:        result.Score,
		Total:        result.Total,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := h.store.SaveSubmission(r.Context(), sub); err != nil {
		log.Printf("[forms] save submission failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save submission"})
		return
	}

	gapAnalysis := analysis.AnalyzeGaps(result.Records, h.gapCfg)
	log.Printf("[forms] submission %s: %d/%d, %d weak topics",
		sub.ID, result.Score, result.Total, len(gapAnalysis.WeakTopics))

	if req.StudentEmail != "" {
		go h.followUp(req.StudentName, req.StudentEmail, result, gapAnalysis)
	}

	writeJSON(w, http.StatusOK, models.SubmitFormResponse{
		SubmissionID: sub.ID,
		Score:        result.Score,
		Total:        result.Total,
		Percentage:   result.Percentage(),
		Analysis:     gapAnalysis,
	})
}

// ListSubmissions returns the teacher-facing submission list for a form.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	form, err := h.store.GetBySlug(r.Context(), slug)
	if errors.Is(err, ErrFormNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Form not found"})
		return
	}
	if err != nil {
		log.Printf("[forms] lookup %s failed: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load form"})
		return
	}

	subs, err := h.store.ListSubmissions(r.Context(), form.ID)
	if err != nil {
		log.Printf("[forms] list submissions failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list submissions"})
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"form_id":     form.ID,
		"submissions": subs,
	})
}

// followUp looks up remediation resources, persists a study plan, and
// emails the result. Failures are logged, never surfaced to the
// submitting student.
func (h *Handler) followUp(name, addr string, result GradeResult, gapAnalysis *models.GapAnalysis) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var found map[string]models.Resource
	if h.finder != nil && len(gapAnalysis.WeakTopics) > 0 {
		names := make([]string, 0, len(gapAnalysis.WeakTopics))
		for _, w := range gapAnalysis.WeakTopics {
			names = append(names, w.TopicName)
		}
		found = h.finder.FindResources(ctx, names, "")
	}

	plan := studyplan.Build(gapAnalysis, nil, found, name, addr)
	if h.plans != nil {
		if err := h.plans.Save(ctx, plan); err != nil {
			log.Printf("WARN: [forms] save study plan failed: %v", err)
		} else {
			log.Printf("[forms] study plan %s: %d steps for %s", plan.ID, len(plan.Steps), addr)
		}
	}

	if h.notifier == nil {
		return
	}
	err := h.notifier.SendResults(addr, email.Results{
		StudentName:     name,
		Score:           result.Score,
		Total:           result.Total,
		ScorePercentage: result.Percentage(),
		WeakTopics:      gapAnalysis.WeakTopics,
		Resources:       found,
	})
	if err != nil {
		log.Printf("WARN: [forms] result email to %s failed: %v", addr, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
