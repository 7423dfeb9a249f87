package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Pose is a rigid transform in the simulation plane.
type Pose struct {
	P     mgl64.Vec2
	Angle float64
}

// Identity is the pose at the origin with no rotation.
var Identity = Pose{}

// NewPose returns a pose at (x, y) with no rotation.
func NewPose(x, y float64) Pose {
	return Pose{P: mgl64.Vec2{x, y}}
}

// Rotate rotates v by the pose's angle.
func (t Pose) Rotate(v mgl64.Vec2) mgl64.Vec2 {
	if t.Angle == 0 {
		return v
	}
	return mgl64.Rotate2D(t.Angle).Mul2x1(v)
}

// TransformPoint maps a point from pose-local space to the parent space.
func (t Pose) TransformPoint(v mgl64.Vec2) mgl64.Vec2 {
	return t.Rotate(v).Add(t.P)
}

// Transform composes t with a pose expressed in t's local space.
func (t Pose) Transform(local Pose) Pose {
	return Pose{P: t.TransformPoint(local.P), Angle: t.Angle + local.Angle}
}

// Translate returns the pose moved by d in parent space.
func (t Pose) Translate(d mgl64.Vec2) Pose {
	return Pose{P: t.P.Add(d), Angle: t.Angle}
}

func toVector(v mgl64.Vec2) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}

func fromVector(v cp.Vector) mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}
