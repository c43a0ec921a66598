package topics

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/reteach/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveTopics persists a topic batch for a course and returns the map
// from batch-local topic IDs to database UUIDs. Prerequisite edges are
// saved afterwards; a failed edge is logged, not fatal.
func (s *Store) SaveTopics(ctx context.Context, courseID string, topics []models.Topic) (map[string]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	idToUUID := make(map[string]string, len(topics))
	for idx, topic := range topics {
		topicUUID := uuid.NewString()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO topics (id, course_id, topic_id, name, weight, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			topicUUID, courseID, topic.ID, topic.Name, topic.Weight, idx+1,
		)
		if err != nil {
			return nil, fmt.Errorf("insert topic %s: %w", topic.ID, err)
		}
		idToUUID[topic.ID] = topicUUID
	}

	for _, topic := range topics {
		for _, prereqID := range topic.Prereqs {
			prereqUUID, ok := idToUUID[prereqID]
			if !ok {
				log.Printf("WARN: [topics] prereq %s not found for %s", prereqID, topic.ID)
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO topic_prerequisites (topic_id, prerequisite_topic_id)
				 VALUES ($1, $2)`,
				idToUUID[topic.ID], prereqUUID,
			)
			if err != nil {
				return nil, fmt.Errorf("insert prerequisite edge %s -> %s: %w", topic.ID, prereqID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return idToUUID, nil
}

func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]models.Topic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.topic_id, t.name, t.weight,
		        COALESCE(array_agg(pt.topic_id) FILTER (WHERE pt.topic_id IS NOT NULL), '{}')
		 FROM topics t
		 LEFT JOIN topic_prerequisites tp ON tp.topic_id = t.id
		 LEFT JOIN topics pt ON pt.id = tp.prerequisite_topic_id
		 WHERE t.course_id = $1
		 GROUP BY t.id, t.topic_id, t.name, t.weight, t.order_index
		 ORDER BY t.order_index`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		var prereqs pq.StringArray
		if err := rows.Scan(&t.ID, &t.Name, &t.Weight, &prereqs); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		t.Prereqs = prereqs
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// TopicNameToUUID returns the name -> UUID mapping for a course, used
// when saving questions keyed by topic name.
func (s *Store) TopicNameToUUID(ctx context.Context, courseID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, id FROM topics WHERE course_id = $1`, courseID)
	if err != nil {
		return nil, fmt.Errorf("topic name map: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan topic name: %w", err)
		}
		mapping[name] = id
	}
	return mapping, rows.Err()
}
