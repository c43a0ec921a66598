package textbook

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/reteach/backend/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

type Handler struct {
	store  *Store
	mapper *SectionMapper
}

func NewHandler(store *Store, mapper *SectionMapper) *Handler {
	return &Handler{store: store, mapper: mapper}
}

// spoolPDF copies the uploaded "file" field to a temp file, since the
// PDF reader needs random access. The caller removes the file.
func spoolPDF(w http.ResponseWriter, r *http.Request) (path, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid multipart upload"})
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "file field is required"})
		return "", "", false
	}
	defer file.Close()

	if filepath.Ext(header.Filename) != ".pdf" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "only PDF uploads are supported"})
		return "", "", false
	}

	tmp, err := os.CreateTemp("", "textbook-*.pdf")
	if err != nil {
		log.Printf("[textbook] temp file failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to process upload"})
		return "", "", false
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		log.Printf("[textbook] spool failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to process upload"})
		return "", "", false
	}
	return tmp.Name(), header.Filename, true
}

// Upload accepts a PDF as multipart form field "file", parses its
// structure, and stores the result.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	path, filename, ok := spoolPDF(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	book, err := ParseStructure(path)
	if err != nil {
		log.Printf("[textbook] parse %s failed: %v", filename, err)
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to parse PDF structure",
			Details: err.Error(),
		})
		return
	}
	// Temp file names are meaningless; keep the uploaded name.
	book.Title = titleFromFilename(filename)

	if err := h.store.Save(r.Context(), book); err != nil {
		log.Printf("[textbook] save failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save textbook"})
		return
	}

	log.Printf("[textbook] parsed %q: %d sections via %s", book.Title, len(book.Sections), book.ParsingMethod)
	writeJSON(w, http.StatusCreated, book)
}

// ExtractTextFromPDF returns the plain text of an uploaded PDF, used
// by the frontend to feed syllabus PDFs into topic parsing.
func (h *Handler) ExtractTextFromPDF(w http.ResponseWriter, r *http.Request) {
	path, filename, ok := spoolPDF(w, r)
	if !ok {
		return
	}
	defer os.Remove(path)

	text, err := ExtractText(path)
	if err != nil {
		log.Printf("[textbook] extract %s failed: %v", filename, err)
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to extract text",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   filename,
		"characters": len(text),
		"text":       text,
	})
}

func (h *Handler) GetTextbook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	book, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, ErrTextbookNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Textbook not found"})
		return
	}
	if err != nil {
		log.Printf("[textbook] lookup %s failed: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load textbook"})
		return
	}

	writeJSON(w, http.StatusOK, book)
}

type mapTopicsRequest struct {
	TextbookID    string         `json:"textbook_id"`
	Topics        []models.Topic `json:"topics"`
	Prerequisites []string       `json:"prerequisites,omitempty"`
}

// MapTopics maps the given topics onto a stored textbook's sections.
func (h *Handler) MapTopics(w http.ResponseWriter, r *http.Request) {
	var req mapTopicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.TextbookID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "textbook_id is required"})
		return
	}
	if len(req.Topics) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "topics are required"})
		return
	}

	book, err := h.store.GetByID(r.Context(), req.TextbookID)
	if errors.Is(err, ErrTextbookNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Textbook not found"})
		return
	}
	if err != nil {
		log.Printf("[textbook] lookup %s failed: %v", req.TextbookID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load textbook"})
		return
	}

	mappings, err := h.mapper.MapTopicsToSections(r.Context(), req.Topics, book.Sections, book.Title, req.Prerequisites)
	if err != nil {
		log.Printf("[textbook] mapping failed: %v", err)
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to map topics",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"textbook_id": book.ID,
		"mappings":    mappings,
	})
}

func titleFromFilename(name string) string {
	base := filepath.Base(name)
	return base[:len(base)-len(filepath.Ext(base))]
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
