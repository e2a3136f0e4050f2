package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const schema = `
	CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		title      TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL DEFAULT '',
		category   TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS notes_updated_at_idx ON notes (updated_at DESC);
`

// Repository is the remote Persistence backed by a Postgres "notes" table.
// The database assigns ids and updated_at.
type Repository struct {
	db *sql.DB

	stmtList   *sql.Stmt
	stmtCreate *sql.Stmt
	stmtUpdate *sql.Stmt
	stmtDelete *sql.Stmt
}

func NewRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, classify("ensure schema", err)
	}

	r := &Repository{db: db}
	stmts := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&r.stmtList, `
			SELECT id, title, content, category, updated_at
			FROM notes
			ORDER BY updated_at DESC
		`},
		{&r.stmtCreate, `
			INSERT INTO notes (title, content, category, updated_at)
			VALUES ($1, $2, $3, now())
			RETURNING id, title, content, category, updated_at
		`},
		{&r.stmtUpdate, `
			UPDATE notes
			SET title = $1, content = $2, category = $3, updated_at = now()
			WHERE id = $4
			RETURNING id, title, content, category, updated_at
		`},
		{&r.stmtDelete, `DELETE FROM notes WHERE id = $1`},
	}
	for _, s := range stmts {
		stmt, err := db.PrepareContext(ctx, s.query)
		if err != nil {
			_ = r.Close()
			return nil, classify("prepare", err)
		}
		*s.dst = stmt
	}
	return r, nil
}

func (r *Repository) Close() error {
	for _, s := range []*sql.Stmt{r.stmtList, r.stmtCreate, r.stmtUpdate, r.stmtDelete} {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Note, error) {
	rows, err := r.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, classify("list notes", err)
	}
	defer rows.Close()

	out := make([]Note, 0, 32)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, classify("list notes", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list notes", err)
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, d Draft) (Note, error) {
	d = d.Normalize()
	n, err := scanNote(r.stmtCreate.QueryRowContext(ctx, d.Title, d.Content, d.Category))
	if err != nil {
		return Note{}, classify("create note", err)
	}
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id string, d Draft) (Note, error) {
	d = d.Normalize()
	n, err := scanNote(r.stmtUpdate.QueryRowContext(ctx, d.Title, d.Content, d.Category, id))
	if err != nil {
		return Note{}, classify("update note "+id, err)
	}
	return n, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.stmtDelete.ExecContext(ctx, id)
	if err != nil {
		return classify("delete note "+id, err)
	}
	a, _ := res.RowsAffected()
	if a == 0 {
		return fmt.Errorf("delete note %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var (
		n         Note
		updatedAt time.Time
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.Category, &updatedAt); err != nil {
		return Note{}, err
	}
	n.UpdatedAt = updatedAt.UnixMilli()
	return n.withDefaults(), nil
}

// classify maps driver errors onto the persistence error taxonomy, keeping
// the original error in the chain.
func classify(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23": // data exception, integrity constraint violation
			return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
