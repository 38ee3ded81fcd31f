package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed sql/create_completions.sql
var createCompletionsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createCompletionsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS chapter_completions`)
			return err
		},
	)
}
