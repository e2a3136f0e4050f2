package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"example.com/notes-app/internal/idgen"
)

var (
	bucketNotes = []byte("notes")
	keyNotes    = []byte("notes.v1")
)

// LocalRepository is the on-device Persistence: all notes live as one JSON
// array under a single bbolt key.
type LocalRepository struct {
	db  *bolt.DB
	ids *idgen.Generator
}

// OpenLocal opens (creating if needed) the bbolt file at path. ids may be nil.
func OpenLocal(path string, ids *idgen.Generator) (*LocalRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("local store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNotes)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if ids == nil {
		ids = idgen.Default
	}
	return &LocalRepository{db: db, ids: ids}, nil
}

func (r *LocalRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// HasData reports whether anything was ever stored, corrupt values included.
func (r *LocalRepository) HasData(ctx context.Context) (bool, error) {
	var present bool
	err := r.db.View(func(tx *bolt.Tx) error {
		present = tx.Bucket(bucketNotes).Get(keyNotes) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return present, nil
}

// List decodes the stored array. Records whose ids had to be repaired are
// written back so the repaired ids stay stable.
func (r *LocalRepository) List(ctx context.Context) ([]Note, error) {
	var (
		out      []Note
		repaired bool
	)
	err := r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketNotes).Get(keyNotes)
		if raw == nil {
			out = []Note{}
			return nil
		}
		notes, fixed, err := decodeNotes(raw, r.ids)
		if err != nil {
			return err
		}
		out, repaired = notes, fixed
		return nil
	})
	if err == nil && repaired {
		out, err = r.repair()
	}
	if err != nil {
		if errors.Is(err, ErrDataCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return out, nil
}

// repair re-decodes the stored array inside a write transaction and persists
// the ids assigned to blank or duplicate records.
func (r *LocalRepository) repair() ([]Note, error) {
	var out []Note
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		raw := b.Get(keyNotes)
		if raw == nil {
			out = []Note{}
			return nil
		}
		notes, repaired, err := decodeNotes(raw, r.ids)
		if err != nil {
			return err
		}
		out = notes
		if !repaired {
			return nil
		}
		data, err := json.Marshal(notes)
		if err != nil {
			return err
		}
		return b.Put(keyNotes, data)
	})
	return out, err
}

func (r *LocalRepository) Create(ctx context.Context, d Draft) (Note, error) {
	d = d.Normalize()
	n := Note{ID: r.ids.NewID()}.apply(d, r.ids.Now())
	err := r.mutate(func(notes []Note) ([]Note, error) {
		return append([]Note{n}, notes...), nil
	})
	if err != nil {
		return Note{}, err
	}
	return n, nil
}

func (r *LocalRepository) Update(ctx context.Context, id string, d Draft) (Note, error) {
	d = d.Normalize()
	var updated Note
	err := r.mutate(func(notes []Note) ([]Note, error) {
		for i, n := range notes {
			if n.ID != id {
				continue
			}
			updated = n.apply(d, max(r.ids.Now(), n.UpdatedAt))
			notes[i] = updated
			return notes, nil
		}
		return nil, fmt.Errorf("update note %s: %w", id, ErrNotFound)
	})
	if err != nil {
		return Note{}, err
	}
	return updated, nil
}

func (r *LocalRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(func(notes []Note) ([]Note, error) {
		for i, n := range notes {
			if n.ID == id {
				return append(notes[:i], notes[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("delete note %s: %w", id, ErrNotFound)
	})
}

// mutate rewrites the stored array in one transaction. A corrupt value is
// replaced as if it were empty.
func (r *LocalRepository) mutate(fn func([]Note) ([]Note, error)) error {
	var fnErr error
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		notes := []Note{}
		if raw := b.Get(keyNotes); raw != nil {
			if decoded, _, err := decodeNotes(raw, r.ids); err == nil {
				notes = decoded
			}
		}
		next, err := fn(notes)
		if err != nil {
			fnErr = err
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return b.Put(keyNotes, data)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// localRecord accepts updatedAt as epoch milliseconds or an ISO-8601 string.
type localRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	UpdatedAt timestamp `json:"updatedAt"`
}

type timestamp int64

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = timestamp(parseTimestamp(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*t = timestamp(int64(f))
	return nil
}

func parseTimestamp(s string) int64 {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UnixMilli()
		}
	}
	return 0
}

// decodeNotes parses the stored array. Blank and duplicate ids are replaced
// with fresh ones; repaired reports whether that happened.
func decodeNotes(raw []byte, ids *idgen.Generator) (notes []Note, repaired bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false, fmt.Errorf("%w: value under %q is not an array", ErrDataCorrupt, keyNotes)
	}
	var records []localRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrDataCorrupt, err)
	}
	notes = make([]Note, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		id := rec.ID
		if _, dup := seen[id]; dup || id == "" {
			id = ids.NewID()
			repaired = true
		}
		seen[id] = struct{}{}
		notes = append(notes, Note{
			ID:        id,
			Title:     rec.Title,
			Content:   rec.Content,
			Category:  rec.Category,
			UpdatedAt: int64(rec.UpdatedAt),
		}.withDefaults())
	}
	return notes, repaired, nil
}
