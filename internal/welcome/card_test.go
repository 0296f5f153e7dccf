package welcome

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

func TestRenderCard(t *testing.T) {
	img, err := Render(Card{
		Width:  640,
		Height: 360,
		Title:  "Welcome",
		Lines:  []string{"Videos start in 5 seconds"},
		Link:   "https://www.youtube.com/watch?v=7lUHfM0jI60",
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 360), img.Bounds())

	assert.Equal(t, backgroundColor, img.RGBAAt(1, 1), "corner keeps the background colour")

	// The QR quiet zone is white.
	size := 360 / 4
	margin := size / 8
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, img.RGBAAt(640-size-margin+1, 360-size-margin+1))
}

func TestRenderCardWithBackground(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{R: 0xff, A: 0xff}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			bg.SetRGBA(x, y, red)
		}
	}

	img, err := Render(Card{Width: 400, Height: 200, Background: bg})
	require.NoError(t, err)

	assert.Equal(t, red, img.RGBAAt(200, 100), "background is centred")
	assert.Equal(t, backgroundColor, img.RGBAAt(5, 100), "square background leaves side bars")
}

func TestRenderCardInvalidSize(t *testing.T) {
	_, err := Render(Card{})
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "welcome.png")
	require.NoError(t, WritePNG(Card{Width: 320, Height: 180, Title: "Hi", Link: "x"}, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
}

func TestFitRect(t *testing.T) {
	dst := image.Rect(0, 0, 400, 200)
	assert.Equal(t, image.Rect(100, 0, 300, 200), fitRect(image.Rect(0, 0, 50, 50), dst))
	assert.Equal(t, image.Rect(0, 50, 400, 150), fitRect(image.Rect(0, 0, 800, 200), dst))
	assert.Equal(t, dst, fitRect(image.Rectangle{}, dst))
}
