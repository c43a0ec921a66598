package studyplan

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reteach/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrPlanNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Study plan not found"})
		return
	}
	if err != nil {
		log.Printf("[studyplan] lookup %s failed: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load study plan"})
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// ListPlans returns a student's plans, newest first, keyed by the
// email query parameter.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	studentEmail := r.URL.Query().Get("email")
	if studentEmail == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "email query parameter is required"})
		return
	}

	plans, err := h.store.ListByEmail(r.Context(), studentEmail)
	if err != nil {
		log.Printf("[studyplan] list for %s failed: %v", studentEmail, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list study plans"})
		return
	}
	if plans == nil {
		plans = []models.StudyPlan{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student_email": studentEmail,
		"plans":         plans,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
