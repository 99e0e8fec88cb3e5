// If you are AI: This file provides GIF fixtures for tests across packages.
// Fixtures are generated in memory with image/gif so no binary testdata is checked in.

package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
)

// Palette is the fixture palette; frame i of AnimatedGIF is filled with Palette[i%len(Palette)].
var Palette = color.Palette{
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 255, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, G: 255, B: 255, A: 255},
}

// AnimatedGIF encodes a width x height GIF with the given per-frame delays (1/100 s).
// loopCount follows image/gif semantics: -1 omits the loop extension, 0 loops forever.
func AnimatedGIF(t testing.TB, width, height int, delays []int, loopCount int) []byte {
	t.Helper()

	anim := &gif.GIF{LoopCount: loopCount}
	for i, delay := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), Palette)
		idx := uint8(i % len(Palette))
		for p := range frame.Pix {
			frame.Pix[p] = idx
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return Encode(t, anim)
}

// Encode serialises a GIF, failing the test on error.
func Encode(t testing.TB, anim *gif.GIF) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("Failed to encode gif: %v", err)
	}
	return buf.Bytes()
}
