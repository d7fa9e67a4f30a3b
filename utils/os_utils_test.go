package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectFile(t *testing.T) {
	dir := t.TempDir()
	src, err := OpenLogFile(filepath.Join(dir, "src.log"))
	require.NoError(t, err)
	defer src.Close()
	dst, err := OpenLogFile(filepath.Join(dir, "dst.log"))
	require.NoError(t, err)
	defer dst.Close()

	require.NoError(t, RedirectFile(src, dst))
	_, err = src.WriteString("hello\n")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "dst.log"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
