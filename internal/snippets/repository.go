package snippets

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloPavan/sniply_inject/internal/db"
)

// Repository persists snippets in Postgres. The active flag is stored as a
// publish/draft status and the seq column carries insertion order.
type Repository struct {
	base *db.Base
}

func NewRepository(base *db.Base) *Repository {
	return &Repository{base: base}
}

const (
	statusPublish = "publish"
	statusDraft   = "draft"
)

const (
	sqlSnippetColumns = `id, name, code, code_type, location, custom_hook, priority, status, created_at, updated_at`

	sqlSnippetInsert = `INSERT INTO snippets (id, name, code, code_type, location, custom_hook, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at;`

	sqlSnippetSelectByID = `SELECT ` + sqlSnippetColumns + `
		FROM snippets
		WHERE id = $1
		LIMIT 1;`

	sqlSnippetListBase = `SELECT ` + sqlSnippetColumns + `
		FROM snippets
		WHERE %s
		ORDER BY seq ASC;`

	sqlSnippetUpdate = `UPDATE snippets
		SET name = $1, code = $2, code_type = $3, location = $4, custom_hook = $5, priority = $6, status = $7, updated_at = now()
		WHERE id = $8
		RETURNING created_at, updated_at;`

	sqlSnippetSetStatus = `UPDATE snippets
		SET status = $1, updated_at = now()
		WHERE id = $2;`

	sqlSnippetToggleStatus = `UPDATE snippets
		SET status = CASE WHEN status = 'publish' THEN 'draft' ELSE 'publish' END,
			updated_at = now()
		WHERE id = $1
		RETURNING status;`

	sqlSnippetDelete = `DELETE FROM snippets
		WHERE id = $1;`
)

func statusFor(active bool) string {
	if active {
		return statusPublish
	}
	return statusDraft
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*Snippet, error) {
	var s Snippet
	var codeType, location, status string
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&codeType,
		&location,
		&s.CustomHook,
		&s.Priority,
		&status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.CodeType = ParseCodeType(codeType)
	s.Location = ParseLocation(location)
	s.Active = status == statusPublish
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, s *Snippet) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	return r.base.Q().QueryRow(ctx, sqlSnippetInsert,
		s.ID,
		s.Name,
		s.Code,
		string(s.CodeType),
		string(s.Location),
		s.CustomHook,
		s.Priority,
		statusFor(s.Active),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Snippet, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	s, err := scanSnippet(r.base.Q().QueryRow(ctx, sqlSnippetSelectByID, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *Repository) List(ctx context.Context, f SnippetFilter) ([]*Snippet, error) {
	where := []string{"1=1"}
	args := make([]any, 0, 3)
	argPos := 1

	if f.Active != nil {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, statusFor(*f.Active))
		argPos++
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("location = $%d", argPos))
		args = append(args, string(f.Location))
		argPos++
	}
	if f.CodeType != "" {
		where = append(where, fmt.Sprintf("code_type = $%d", argPos))
		args = append(args, string(f.CodeType))
	}

	query := fmt.Sprintf(sqlSnippetListBase, strings.Join(where, " AND "))

	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	rows, err := r.base.Q().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Snippet, 0, 16)
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, s *Snippet) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	err := r.base.Q().QueryRow(ctx, sqlSnippetUpdate,
		s.Name,
		s.Code,
		string(s.CodeType),
		string(s.Location),
		s.CustomHook,
		s.Priority,
		statusFor(s.Active),
		s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlSnippetSetStatus, statusFor(active), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) ToggleActive(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	var status string
	if err := r.base.Q().QueryRow(ctx, sqlSnippetToggleStatus, id).Scan(&status); err != nil {
		if IsNotFound(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return status == statusPublish, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.base.WithTimeout(ctx)
	defer cancel()

	tag, err := r.base.Q().Exec(ctx, sqlSnippetDelete, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
