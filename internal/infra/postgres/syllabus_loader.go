package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"educraft-session-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// SyllabusLoader loads syllabus JSONB from Postgres.
type SyllabusLoader struct {
	pool *pgxpool.Pool
}

func NewSyllabusLoader(pool *pgxpool.Pool) *SyllabusLoader {
	return &SyllabusLoader{pool: pool}
}

func (l *SyllabusLoader) LoadSyllabus(ctx context.Context, syllabusID string) (domain.Syllabus, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM syllabi WHERE id=$1`, syllabusID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Syllabus{}, domain.ErrSyllabusNotFound
	}
	if err != nil {
		return domain.Syllabus{}, fmt.Errorf("load syllabus: %w", err)
	}
	var syllabus domain.Syllabus
	if err := json.Unmarshal(raw, &syllabus); err != nil {
		return domain.Syllabus{}, fmt.Errorf("unmarshal syllabus: %w", err)
	}
	return syllabus, nil
}

// ListSyllabi returns the user's syllabi, oldest first.
func (l *SyllabusLoader) ListSyllabi(ctx context.Context, userID string) ([]domain.Syllabus, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM syllabi WHERE user_id=$1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list syllabi: %w", err)
	}
	defer rows.Close()

	out := []domain.Syllabus{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan syllabus: %w", err)
		}
		var s domain.Syllabus
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("unmarshal syllabus: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list syllabi: %w", err)
	}
	return out, nil
}

// SaveSyllabus upserts a syllabus document.
func (l *SyllabusLoader) SaveSyllabus(ctx context.Context, s domain.Syllabus) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal syllabus: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
INSERT INTO syllabi (id, user_id, data) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, data = EXCLUDED.data`,
		s.ID, s.UserID, string(raw))
	if err != nil {
		return fmt.Errorf("save syllabus: %w", err)
	}
	return nil
}
