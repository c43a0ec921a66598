package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/reteach/backend/internal/config"
)

func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		id          VARCHAR(100) PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		subject     VARCHAR(100),
		level       VARCHAR(10),
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS topics (
		id          UUID PRIMARY KEY,
		course_id   VARCHAR(100) NOT NULL,
		topic_id    VARCHAR(20) NOT NULL,
		name        VARCHAR(255) NOT NULL,
		weight      REAL NOT NULL DEFAULT 1.0,
		order_index INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(course_id, topic_id)
	);

	CREATE INDEX IF NOT EXISTS idx_topics_course ON topics(course_id);

	CREATE TABLE IF NOT EXISTS topic_prerequisites (
		topic_id              UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		prerequisite_topic_id UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		PRIMARY KEY(topic_id, prerequisite_topic_id),
		CHECK(topic_id != prerequisite_topic_id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id           BIGSERIAL PRIMARY KEY,
		question_id  VARCHAR(20) NOT NULL,
		course_id    VARCHAR(100) NOT NULL,
		topic_id     UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		stem         TEXT NOT NULL,
		options      JSONB NOT NULL,
		answer_index INT NOT NULL,
		rationale    TEXT NOT NULL,
		difficulty   VARCHAR(10) NOT NULL,
		bloom_level  VARCHAR(30),
		created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_questions_course ON questions(course_id);
	CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic_id);

	CREATE TABLE IF NOT EXISTS surveys (
		survey_id       VARCHAR(50) PRIMARY KEY,
		course_id       VARCHAR(100) NOT NULL,
		title           VARCHAR(255) NOT NULL,
		description     TEXT,
		total_questions INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS survey_questions (
		id              BIGSERIAL PRIMARY KEY,
		survey_id       VARCHAR(50) NOT NULL REFERENCES surveys(survey_id) ON DELETE CASCADE,
		question_id     VARCHAR(20) NOT NULL,
		topic_id        VARCHAR(100),
		text            TEXT NOT NULL,
		cognitive_level VARCHAR(20) NOT NULL DEFAULT 'understand'
	);

	CREATE INDEX IF NOT EXISTS idx_survey_questions_survey ON survey_questions(survey_id);

	CREATE TABLE IF NOT EXISTS forms (
		id         UUID PRIMARY KEY,
		slug       VARCHAR(100) UNIQUE NOT NULL,
		title      VARCHAR(255) NOT NULL,
		course_id  VARCHAR(100),
		questions  JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_forms_slug ON forms(slug);

	CREATE TABLE IF NOT EXISTS submissions (
		id            UUID PRIMARY KEY,
		form_id       UUID NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
		student_name  VARCHAR(255),
		student_email VARCHAR(255),
		answers       JSONB NOT NULL,
		score         INT NOT NULL,
		total         INT NOT NULL,
		submitted_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id, submitted_at DESC);
	CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(student_email);

	CREATE TABLE IF NOT EXISTS study_plans (
		id                UUID PRIMARY KEY,
		student_name      VARCHAR(255),
		student_email     VARCHAR(255),
		overall_readiness REAL NOT NULL DEFAULT 0,
		steps             JSONB NOT NULL,
		message           TEXT,
		created_at        TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_study_plans_email ON study_plans(student_email, created_at DESC);

	CREATE TABLE IF NOT EXISTS textbooks (
		id             UUID PRIMARY KEY,
		title          VARCHAR(255) NOT NULL,
		total_pages    INT NOT NULL DEFAULT 0,
		parsing_method VARCHAR(20) NOT NULL,
		sections       JSONB NOT NULL,
		created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
