package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))
	for _, name := range []string{"a/one.json", "a/b/two.json", "a/skip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644))
	}

	files, err := ExpandInputs(filepath.Join(dir, "**", "*.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "b", "two.json"),
		filepath.Join(dir, "a", "one.json"),
	}, files)

	plain := filepath.Join(dir, "a", "one.json")
	files, err = ExpandInputs(plain)
	require.NoError(t, err)
	assert.Equal(t, []string{plain}, files)

	_, err = ExpandInputs(filepath.Join(dir, "*.csv"))
	assert.Error(t, err)

	_, err = ExpandInputs(dir)
	assert.Error(t, err)
}
