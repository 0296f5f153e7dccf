package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 2)
	writePNG(t, filepath.Join(dir, "a.png"), 8, 6)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.PageCount())
	img, err := src.RenderPage(0, 72)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx(), "pages are sorted by name")

	_, err = src.RenderPage(2, 72)
	assert.Error(t, err)
}

func TestOpenSingleFileAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	writePNG(t, path, 3, 3)

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.PageCount())

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	other := filepath.Join(dir, "bg.gif")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	_, err = Open(other)
	assert.Error(t, err)

	_, err = NewImageSource(t.TempDir())
	assert.Error(t, err, "empty directory")
}
