package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded migration in file name order inside one
// transaction. Migrations must be idempotent; there is no version table.
func (b *Base) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	return b.WithTx(ctx, func(ctx context.Context, q Queryer) error {
		for _, name := range names {
			stmt, err := migrations.ReadFile(name)
			if err != nil {
				return err
			}
			if _, err := q.Exec(ctx, string(stmt)); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
		return nil
	})
}
