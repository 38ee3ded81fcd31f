package postgres

import (
	"context"
	"fmt"

	"educraft-session-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CompletionStore persists the latest completion per storage key.
type CompletionStore struct {
	pool *pgxpool.Pool
}

func NewCompletionStore(pool *pgxpool.Pool) *CompletionStore {
	return &CompletionStore{pool: pool}
}

const upsertCompletion = `
INSERT INTO chapter_completions (
    storage_key, id, user_id, syllabus_id, chapter_id, chapter_title, score,
    total_questions, correct_answers, accuracy, time_taken, mode, subject, grade, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (storage_key) DO UPDATE SET
    id = EXCLUDED.id,
    user_id = EXCLUDED.user_id,
    syllabus_id = EXCLUDED.syllabus_id,
    chapter_id = EXCLUDED.chapter_id,
    chapter_title = EXCLUDED.chapter_title,
    score = EXCLUDED.score,
    total_questions = EXCLUDED.total_questions,
    correct_answers = EXCLUDED.correct_answers,
    accuracy = EXCLUDED.accuracy,
    time_taken = EXCLUDED.time_taken,
    mode = EXCLUDED.mode,
    subject = EXCLUDED.subject,
    grade = EXCLUDED.grade,
    completed_at = EXCLUDED.completed_at`

func (s *CompletionStore) Upsert(ctx context.Context, c domain.Completion) error {
	_, err := s.pool.Exec(ctx, upsertCompletion,
		c.StorageKey(), c.ID, c.UserID, c.SyllabusID, c.ChapterID, c.ChapterTitle, c.Score,
		c.TotalQuestions, c.CorrectAnswers, c.Accuracy, c.TimeTaken, c.Mode, c.Subject, c.Grade, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

func (s *CompletionStore) ListByUser(ctx context.Context, userID string) ([]domain.Completion, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, syllabus_id, chapter_id, chapter_title, score, total_questions,
       correct_answers, accuracy, time_taken, mode, subject, grade, completed_at
FROM chapter_completions WHERE user_id=$1 ORDER BY completed_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []domain.Completion
	for rows.Next() {
		var c domain.Completion
		if err := rows.Scan(&c.ID, &c.UserID, &c.SyllabusID, &c.ChapterID, &c.ChapterTitle, &c.Score,
			&c.TotalQuestions, &c.CorrectAnswers, &c.Accuracy, &c.TimeTaken, &c.Mode, &c.Subject,
			&c.Grade, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return out, nil
}
