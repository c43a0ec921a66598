package textbook

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/reteach/backend/internal/models"
)

var ErrTextbookNotFound = errors.New("textbook not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save persists a parsed textbook, assigning it an ID.
func (s *Store) Save(ctx context.Context, book *models.Textbook) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	sectionsJSON, err := json.Marshal(book.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO textbooks (id, title, total_pages, parsing_method, sections)
		 VALUES ($1, $2, $3, $4, $5)`,
		book.ID, book.Title, book.TotalPages, book.ParsingMethod, sectionsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert textbook: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Textbook, error) {
	var book models.Textbook
	var sectionsJSON []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, total_pages, parsing_method, sections
		 FROM textbooks WHERE id = $1`,
		id,
	).Scan(&book.ID, &book.Title, &book.TotalPages, &book.ParsingMethod, &sectionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTextbookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query textbook %s: %w", id, err)
	}

	if err := json.Unmarshal(sectionsJSON, &book.Sections); err != nil {
		return nil, fmt.Errorf("decode sections for %s: %w", id, err)
	}
	return &book, nil
}
