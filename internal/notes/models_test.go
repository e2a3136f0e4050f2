package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDraft_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Draft
		want Draft
	}{
		{"defaults", Draft{}, Draft{Title: "Untitled", Category: "General"}},
		{"whitespace", Draft{Title: " \t", Category: "\n"}, Draft{Title: "Untitled", Category: "General"}},
		{"trims", Draft{Title: " T ", Category: " C "}, Draft{Title: "T", Category: "C"}},
		{"content untouched", Draft{Title: "T", Content: "  body  ", Category: "C"}, Draft{Title: "T", Content: "  body  ", Category: "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	u := Unavailable{Reason: "DATABASE_URL is empty"}

	_, err := u.List(ctx)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.ErrorContains(t, err, "DATABASE_URL is empty")

	_, err = u.Create(ctx, Draft{})
	require.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = u.Update(ctx, "a", Draft{})
	require.ErrorIs(t, err, ErrStorageUnavailable)

	require.ErrorIs(t, Unavailable{}.Delete(ctx, "a"), ErrStorageUnavailable)
}
