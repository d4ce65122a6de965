package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256(t *testing.T) {
	// Known vector for the empty input.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256(nil))

	a := SHA256([]byte("statement one"))
	b := SHA256([]byte("statement two"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, a, SHA256([]byte("statement one")))
}

func TestSHA256File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	content := []byte("pdf bytes")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	got, err := SHA256File(path)
	require.NoError(t, err)
	assert.Equal(t, SHA256(content), got)

	_, err = SHA256File(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
