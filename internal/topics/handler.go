package topics

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/reteach/backend/internal/models"
)

type Handler struct {
	parser *Parser
	store  *Store
}

func NewHandler(parser *Parser, store *Store) *Handler {
	return &Handler{parser: parser, store: store}
}

func (h *Handler) ParseTopics(w http.ResponseWriter, r *http.Request) {
	var req models.ParseTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.SyllabusText == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "syllabus_text is required"})
		return
	}
	if req.CourseLevel != nil && !models.ValidCourseLevels[*req.CourseLevel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "course_level must be 'hs', 'ug', or 'grad'"})
		return
	}

	resp, err := h.parser.ParseTopics(r.Context(), req.SyllabusText, req.CourseLevel)
	if err != nil {
		log.Printf("[topics] parse failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to parse topics: " + err.Error()})
		return
	}

	// Parsing succeeded; a failed save is logged and the parsed batch
	// still returned, so the caller never pays for regeneration.
	if req.CourseID != "" && h.store != nil {
		if _, err := h.store.SaveTopics(r.Context(), req.CourseID, resp.Topics); err != nil {
			log.Printf("WARN: [topics] save for course %s failed: %v", req.CourseID, err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListTopics returns the stored topic batch for a course.
func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseID"]

	topics, err := h.store.ListByCourse(r.Context(), courseID)
	if err != nil {
		log.Printf("[topics] list for course %s failed: %v", courseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list topics"})
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": courseID,
		"topics":    topics,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
