package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed sql/create_syllabi.sql
var createSyllabiSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createSyllabiSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS syllabi`)
			return err
		},
	)
}
