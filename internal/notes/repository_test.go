package notes

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), ErrNotFound},
		{"not null violation", &pgconn.PgError{Code: "23502", Message: "null value"}, ErrValidation},
		{"string too long", &pgconn.PgError{Code: "22001", Message: "value too long"}, ErrValidation},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, ErrStorageUnavailable},
		{"connection", errors.New("dial tcp: connection refused"), ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			require.ErrorIs(t, got, tt.want)
			require.ErrorContains(t, got, "op")
		})
	}
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505"}
	got := classify("create note", cause)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(got, &pgErr))
	require.Equal(t, "23505", pgErr.Code)
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanNote_MapsRow(t *testing.T) {
	at := time.UnixMilli(1700000000123).UTC()
	n, err := scanNote(fakeRow{values: []any{"id-1", "", "body", "", at}})
	require.NoError(t, err)
	require.Equal(t, Note{ID: "id-1", Title: DefaultTitle, Content: "body", Category: DefaultCategory, UpdatedAt: 1700000000123}, n)

	_, err = scanNote(fakeRow{err: sql.ErrNoRows})
	require.ErrorIs(t, err, sql.ErrNoRows)
}
