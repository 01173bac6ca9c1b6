package imagestore_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitwell/fitwell-api/internal/lib/imagestore"
)

func TestSave_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := imagestore.New(dir, 5)
	assert.NoError(t, err)

	name, err := store.Save(bytes.NewReader([]byte("fake-png-bytes")), "photo.PNG", "image/png")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"), "extension should be lowercased")

	data, err := os.ReadFile(filepath.Join(dir, name))
	assert.NoError(t, err)
	assert.Equal(t, []byte("fake-png-bytes"), data)
}

func TestSave_UnsupportedType(t *testing.T) {
	store, err := imagestore.New(t.TempDir(), 5)
	assert.NoError(t, err)

	_, err = store.Save(bytes.NewReader([]byte("%PDF-1.4")), "doc.pdf", "application/pdf")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, imagestore.ErrUnsupportedType))
}

func TestSave_TooLarge(t *testing.T) {
	dir := t.TempDir()
	store, err := imagestore.New(dir, 0) // zero MB budget, anything is too big
	assert.NoError(t, err)

	_, err = store.Save(bytes.NewReader([]byte("x")), "big.jpg", "image/jpeg")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, imagestore.ErrTooLarge))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "rejected upload should not leave a file behind")
}

func TestRemove_MissingFileIsNotAnError(t *testing.T) {
	store, err := imagestore.New(t.TempDir(), 5)
	assert.NoError(t, err)

	assert.NoError(t, store.Remove("never-existed.png"))
	assert.NoError(t, store.Remove(""))
}
