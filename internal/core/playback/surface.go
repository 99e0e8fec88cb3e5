// If you are AI: This file defines the presentation surface a playback slot draws onto.
// Surfaces are supplied by the presentation layer; the core never styles them.

package playback

import (
	"image"
)

// Surface is the drawing target bound to a slot.
// Present must copy the frame synchronously; the slot reuses the buffer for the next frame.
type Surface interface {
	// ID identifies the host element the surface overlays.
	ID() string
	// SetEnabled shows or hides the overlay above the host element.
	SetEnabled(enabled bool)
	// SetCanvasSize sizes the canvas to the decoded image dimensions.
	SetCanvasSize(width, height int)
	// Present draws a full RGBA frame.
	Present(frame *image.RGBA)
	// MarkAnimating hides the static image while frames are shown.
	MarkAnimating(animating bool)
	// MarkDrawn reveals the canvas once something has been drawn.
	MarkDrawn(drawn bool)
	// ShowControl shows or hides the play/stop control.
	ShowControl(shown bool)
	// DrawOverlay composites a diagnostic image at a canvas position.
	DrawOverlay(img image.Image, at image.Point)
}
