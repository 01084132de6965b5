// Package camera holds the view transform and the background colour that the
// driver clears the screen with every frame.
package camera

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Camera centers the view on a world coordinate and supports zoom.
type Camera struct {
	PosX float64
	PosY float64

	screenW int
	screenH int
	zoom    float64

	// smoothing factor (0..1). higher -> faster follow. e.g. 0.15
	smooth float64
	// world bounds in pixels (0 means unbounded)
	worldW float64
	worldH float64

	bg color.Color
}

// New creates a camera with the given logical screen size and initial zoom.
func New(screenW, screenH int, zoom float64) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		PosX:    float64(screenW) / 2.0,
		PosY:    float64(screenH) / 2.0,
		screenW: screenW,
		screenH: screenH,
		zoom:    zoom,
		smooth:  0.15,
		bg:      color.Black,
	}
}

// BackgroundColor returns the colour the screen is cleared with.
func (c *Camera) BackgroundColor() color.Color {
	if c == nil || c.bg == nil {
		return color.Black
	}
	return c.bg
}

// SetBackgroundColor changes the clear colour. nil resets it to black.
func (c *Camera) SetBackgroundColor(clr color.Color) {
	if c == nil {
		return
	}
	if clr == nil {
		clr = color.Black
	}
	c.bg = clr
}

// Fill clears screen with the background colour.
func (c *Camera) Fill(screen *ebiten.Image) {
	if c == nil || screen == nil {
		return
	}
	screen.Fill(c.BackgroundColor())
}

// SetZoom updates the camera zoom.
func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

// Zoom returns the current camera zoom.
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// SetScreenSize updates the logical screen size used by the camera.
func (c *Camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW = w
	c.screenH = h
}

// ScreenSize returns the logical screen size.
func (c *Camera) ScreenSize() (int, int) {
	return c.screenW, c.screenH
}

// SetWorldBounds sets the world pixel dimensions for clamping camera position.
func (c *Camera) SetWorldBounds(w, h float64) {
	c.worldW = w
	c.worldH = h
}

func (c *Camera) SetSmooth(f float64) {
	c.smooth = clamp(f, 0, 1)
}

// ViewTopLeft returns the world-space top-left of the current view.
func (c *Camera) ViewTopLeft() (float64, float64) {
	viewW := float64(c.screenW) / c.zoom
	viewH := float64(c.screenH) / c.zoom
	return c.PosX - viewW/2.0, c.PosY - viewH/2.0
}

// WorldToScreen maps a world point into screen pixels.
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	left, top := c.ViewTopLeft()
	return (x - left) * c.zoom, (y - top) * c.zoom
}

// Follow moves the camera toward the target world coordinate. Call from the
// fixed-rate update loop to get consistent smoothing.
func (c *Camera) Follow(targetX, targetY float64) {
	if c.smooth <= 0 || c.smooth >= 1 {
		c.PosX = targetX
		c.PosY = targetY
	} else {
		c.PosX += (targetX - c.PosX) * c.smooth
		c.PosY += (targetY - c.PosY) * c.smooth
	}
	c.constrain()
}

// SnapTo immediately centers the camera on the given world coordinates.
func (c *Camera) SnapTo(x, y float64) {
	c.PosX = x
	c.PosY = y
	c.constrain()
}

// Reset recenters the camera on the screen and restores zoom 1. The
// background colour is left alone.
func (c *Camera) Reset() {
	c.zoom = 1
	c.worldW, c.worldH = 0, 0
	c.PosX = float64(c.screenW) / 2.0
	c.PosY = float64(c.screenH) / 2.0
}

// constrain snaps to the 1/zoom grid so source texels land on whole screen
// pixels, then clamps to the world bounds.
func (c *Camera) constrain() {
	c.PosX = math.Round(c.PosX*c.zoom) / c.zoom
	c.PosY = math.Round(c.PosY*c.zoom) / c.zoom

	halfW := float64(c.screenW) / c.zoom / 2.0
	halfH := float64(c.screenH) / c.zoom / 2.0
	c.PosX = clampAxis(c.PosX, halfW, c.worldW)
	c.PosY = clampAxis(c.PosY, halfH, c.worldH)
}

func clampAxis(pos, half, world float64) float64 {
	if world <= 0 {
		return pos
	}
	if world-half < half {
		// world smaller than view: center on world
		return world / 2.0
	}
	return clamp(pos, half, world-half)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
