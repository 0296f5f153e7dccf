// Package welcome renders the full-screen card shown before the videos.
package welcome

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	backgroundColor = color.RGBA{R: 0x14, G: 0x16, B: 0x1d, A: 0xff}
	textColor       = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

// Card describes the welcome slide.
type Card struct {
	Width, Height int
	Title         string
	Lines         []string
	// Link is encoded as a QR code in the bottom right corner when set.
	Link       string
	Background image.Image
}

func Render(c Card) (*image.RGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("invalid card size %dx%d", c.Width, c.Height)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, xdraw.Src)

	if c.Background != nil {
		xdraw.CatmullRom.Scale(canvas, fitRect(c.Background.Bounds(), canvas.Bounds()), c.Background, c.Background.Bounds(), xdraw.Over, nil)
	}

	// Text scale follows the card height; basicfont glyphs are 13px tall.
	titleScale := max(1, c.Height/120)
	lineScale := max(1, c.Height/240)

	y := c.Height / 4
	if c.Title != "" {
		drawText(canvas, c.Title, c.Width/2, y, titleScale)
		y += 13*titleScale + 13*lineScale
	}
	for _, line := range c.Lines {
		drawText(canvas, line, c.Width/2, y, lineScale)
		y += 16 * lineScale
	}

	if c.Link != "" {
		qr, err := qrcode.New(c.Link, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qr code: %w", err)
		}
		size := min(c.Width, c.Height) / 4
		margin := size / 8
		code := qr.Image(size)
		at := image.Rect(c.Width-size-margin, c.Height-size-margin, c.Width-margin, c.Height-margin)
		xdraw.Draw(canvas, at, code, code.Bounds().Min, xdraw.Src)
	}

	return canvas, nil
}

// WritePNG renders the card into path.
func WritePNG(c Card, path string) error {
	img, err := Render(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// drawText draws s centred on cx with its top at y, enlarged by scale.
func drawText(dst *image.RGBA, s string, cx, y, scale int) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height
	if w == 0 {
		return
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	target := image.Rect(cx-w*scale/2, y, cx-w*scale/2+w*scale, y+h*scale)
	xdraw.NearestNeighbor.Scale(dst, target, small, small.Bounds(), xdraw.Over, nil)
}

// fitRect returns the largest rectangle with src's aspect ratio centred
// inside dst.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw == 0 || sh == 0 {
		return dst
	}

	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}
