package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/reteach/backend/internal/llm"
	"github.com/reteach/backend/internal/models"
	"github.com/reteach/backend/internal/textbook"
	"github.com/reteach/backend/internal/topics"
)

type Handler struct {
	generator  *Generator
	store      *Store
	books      *textbook.Store
	topicStore *topics.Store
}

func NewHandler(generator *Generator, store *Store, books *textbook.Store, topicStore *topics.Store) *Handler {
	return &Handler{generator: generator, store: store, books: books, topicStore: topicStore}
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Topics) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "topics is required"})
		return
	}
	if req.Difficulty != nil && !models.ValidDifficulties[*req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "difficulty must be 'easy', 'med', or 'hard'"})
		return
	}
	if req.CourseLevel != nil && !models.ValidCourseLevels[*req.CourseLevel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "course_level must be 'hs', 'ug', or 'grad'"})
		return
	}
	if req.CountPerTopic <= 0 {
		req.CountPerTopic = 5
	}

	var bookContext string
	if req.UseTextbook && req.TextbookID != "" && h.books != nil {
		summary, err := h.textbookContext(r, req.TextbookID)
		if err != nil {
			log.Printf("WARN: [questions] textbook context unavailable: %v", err)
		}
		bookContext = summary
	}

	resp, err := h.generator.GenerateQuestions(r.Context(), req.Topics, GenerateOptions{
		CountPerTopic: req.CountPerTopic,
		Difficulty:    req.Difficulty,
		CourseLevel:   req.CourseLevel,
		Context:       bookContext,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNoValidResults) {
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "No questions could be generated for the given topics"})
			return
		}
		log.Printf("[questions] generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Generation failed: " + err.Error()})
		return
	}

	// Persistence failure keeps the generated batch; callers can retry
	// the save, regeneration would cost another round of provider calls.
	if req.CourseID != "" && h.store != nil && h.topicStore != nil {
		mapping, err := h.topicStore.TopicNameToUUID(r.Context(), req.CourseID)
		if err != nil {
			log.Printf("WARN: [questions] topic mapping for course %s failed: %v", req.CourseID, err)
		} else if saved, err := h.store.SaveBatch(r.Context(), req.CourseID, resp.Questions, mapping); err != nil {
			log.Printf("WARN: [questions] save batch failed: %v", err)
		} else {
			log.Printf("[questions] saved %d questions for course %s", saved, req.CourseID)
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GenerateSurvey(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Topics) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "topics is required"})
		return
	}
	if req.QuestionsPerTopic <= 0 {
		req.QuestionsPerTopic = 3
	}

	survey, err := h.generator.GenerateSurvey(r.Context(), req.Topics, req.QuestionsPerTopic)
	if err != nil {
		if errors.Is(err, llm.ErrNoValidResults) {
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "No survey questions could be generated"})
			return
		}
		log.Printf("[survey] generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate survey: " + err.Error()})
		return
	}

	if req.CourseID != "" {
		survey.CourseID = req.CourseID
	}
	if h.store != nil {
		if _, err := h.store.SaveSurvey(r.Context(), survey); err != nil {
			log.Printf("WARN: [survey] save failed: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, models.GenerateSurveyResponse{Survey: *survey})
}

// ListQuestions returns the stored questions for a course.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["courseID"]

	qs, err := h.store.ListByCourse(r.Context(), courseID)
	if err != nil {
		log.Printf("[questions] list for course %s failed: %v", courseID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list questions"})
		return
	}
	if qs == nil {
		qs = []models.Question{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id": courseID,
		"questions": qs,
	})
}

// textbookContext summarizes a stored textbook's structure so the
// generator can ground questions in the course material. Missing
// textbooks degrade to context-free generation.
func (h *Handler) textbookContext(r *http.Request, textbookID string) (string, error) {
	book, err := h.books.GetByID(r.Context(), textbookID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The course uses the textbook %q. Relevant sections:\n", book.Title)
	for i, s := range book.Sections {
		if i >= 30 {
			break
		}
		if s.Number != "" {
			fmt.Fprintf(&b, "- [%s] %s (pages %d-%d)\n", s.Number, s.Title, s.StartPage, s.EndPage)
		} else {
			fmt.Fprintf(&b, "- %s (pages %d-%d)\n", s.Title, s.StartPage, s.EndPage)
		}
	}
	return b.String(), nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
