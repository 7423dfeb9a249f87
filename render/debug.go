package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hellosnippet/physics"
	"golang.org/x/image/colornames"
)

const (
	circleSegments = 24
	dotSize        = 4
)

// View maps world coordinates (y up) to screen pixels (y down). The world
// point Center lands in the middle of a Width x Height screen.
type View struct {
	Center physics.Pose
	Zoom   float64
	Width  int
	Height int
}

// ToScreen returns the screen position of world point (x, y).
func (v View) ToScreen(x, y float64) (float64, float64) {
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	dx, dy := x-v.Center.P.X(), y-v.Center.P.Y()
	s, c := math.Sincos(-v.Center.Angle)
	rx, ry := dx*c-dy*s, dx*s+dy*c
	return float64(v.Width)/2 + rx*zoom, float64(v.Height)/2 - ry*zoom
}

// DrawScene draws every shape of scene as outlines.
func DrawScene(screen *ebiten.Image, scene *physics.Scene, view View) {
	if screen == nil || scene == nil || scene.Space() == nil {
		return
	}
	cp.DrawSpace(scene.Space(), &drawer{screen: screen, view: view})
}

type drawer struct {
	screen *ebiten.Image
	view   View
}

func (d *drawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawPolygon(circle(pos, radius), fill)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, fill)
}

func (d *drawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *drawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
	if radius > 0 {
		d.drawPolygon(circle(a, radius), fill)
		d.drawPolygon(circle(b, radius), fill)
	}
}

func (d *drawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], fill)
}

func (d *drawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = dotSize
	}
	half := size / 2 / d.zoom()
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *drawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *drawer) OutlineColor() cp.FColor {
	return toFColor(colornames.Lime)
}

// ShapeColor picks the outline by role: trigger volumes, static, kinematic
// and dynamic bodies each get their own color.
func (d *drawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil || shape.Body() == nil {
		return toFColor(colornames.White)
	}
	if shape.Sensor() {
		return toFColor(colornames.Gold)
	}
	switch shape.Body().GetType() {
	case cp.BODY_STATIC:
		return toFColor(colornames.Cornflowerblue)
	case cp.BODY_KINEMATIC:
		return toFColor(colornames.Orange)
	}
	return toFColor(colornames.Orchid)
}

func (d *drawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Silver)
}

func (d *drawer) CollisionPointColor() cp.FColor {
	return toFColor(colornames.Red)
}

func (d *drawer) Data() interface{} {
	return nil
}

func (d *drawer) zoom() float64 {
	if d.view.Zoom <= 0 {
		return 1
	}
	return d.view.Zoom
}

func (d *drawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.view.ToScreen(a.X, a.Y)
	x2, y2 := d.view.ToScreen(b.X, b.Y)
	ebitenutil.DrawLine(d.screen, x1, y1, x2, y2, toNRGBA(c))
}

func (d *drawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func circle(center cp.Vector, radius float64) []cp.Vector {
	points := make([]cp.Vector, 0, circleSegments)
	for i := 0; i < circleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(circleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	return points
}

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
