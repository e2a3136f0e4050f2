package notes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileWhere(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"empty matches all", "  ", []string{"1", "2", "3"}},
		{"category", `category == "Work"`, []string{"3"}},
		{"contains and time", `content contains "search" && updatedAt > 150`, []string{"3"}},
		{"or", `title startsWith "G" || id == "1"`, []string{"1", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileWhere(tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(Where(sampleNotes(), p)))
		})
	}
}

func TestCompileWhere_Errors(t *testing.T) {
	_, err := CompileWhere(`title ==`)
	require.Error(t, err)

	_, err = CompileWhere(`title`)
	require.Error(t, err, "non-boolean expressions are rejected")

	_, err = CompileWhere(`unknownField == 1`)
	require.Error(t, err)
}
