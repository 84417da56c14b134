// Package art renders card images as ANSI terminal art.
package art

import (
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

const (
	DefaultWidth  = 40
	DefaultHeight = 32
)

var escape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Render converts img to truecolor half-block art of width x height cells
func Render(img image.Image, width, height int) string {
	scaled := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var b strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			top := average(pixel(scaled, x, y), pixel(scaled, x+1, y))
			bottom := average(pixel(scaled, x, y+1), pixel(scaled, x+1, y+1))
			b.WriteString(cell('▀', top, bottom))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderFile decodes the image at path and renders it
func RenderFile(path string, width, height int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return Render(img, width, height), nil
}

// Cache stores rendered art on disk, keyed by the image path
type Cache struct {
	Dir string
}

// Load returns the art for imagePath, rendering and storing it on a miss
func (c Cache) Load(imagePath string) (string, error) {
	if c.Dir == "" {
		return RenderFile(imagePath, DefaultWidth, DefaultHeight)
	}

	cachePath := filepath.Join(c.Dir, fmt.Sprintf("%x.ansi", md5.Sum([]byte(imagePath))))
	if data, err := os.ReadFile(cachePath); err == nil {
		return string(data), nil
	}

	rendered, err := RenderFile(imagePath, DefaultWidth, DefaultHeight)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create art cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, []byte(rendered), 0644); err != nil {
		return "", fmt.Errorf("failed to write art cache: %w", err)
	}
	return rendered, nil
}

func pixel(img image.Image, x, y int) colorful.Color {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return colorful.Color{}
	}
	c, _ := colorful.MakeColor(img.At(x, y))
	return c
}

func average(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	n := float64(len(colors))
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}

func cell(ch rune, fg, bg colorful.Color) string {
	f := toRGBA(fg)
	k := toRGBA(bg)
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m", f.R, f.G, f.B, k.R, k.G, k.B, ch)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Strip removes ANSI color sequences
func Strip(s string) string {
	return escape.ReplaceAllString(s, "")
}

// VisibleWidth is the number of runes left after stripping color sequences
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(Strip(s))
}

// SideBySide prints art on the left and info lines on the right
func SideBySide(w io.Writer, art string, info []string) {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if art == "" {
		artLines = nil
	}

	artWidth := 0
	for _, line := range artLines {
		artWidth = max(artWidth, VisibleWidth(line))
	}
	column := artWidth
	if artWidth > 0 {
		column += 4
	}

	fmt.Fprintln(w)
	for i := 0; i < max(len(artLines), len(info)); i++ {
		fmt.Fprint(w, "  ")
		if i < len(artLines) {
			fmt.Fprint(w, artLines[i], strings.Repeat(" ", column-VisibleWidth(artLines[i])))
		} else {
			fmt.Fprint(w, strings.Repeat(" ", column))
		}
		if i < len(info) {
			fmt.Fprint(w, info[i])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}
