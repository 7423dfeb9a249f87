package physics

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// BodyType distinguishes immovable actors from simulated ones.
type BodyType int

const (
	BodyStatic BodyType = iota
	BodyDynamic
)

func (t BodyType) String() string {
	if t == BodyStatic {
		return "static"
	}
	return "dynamic"
}

type attachment struct {
	shape    *Shape
	instance *cp.Shape
}

// RigidBody is a named, posed actor with attached shapes.
type RigidBody struct {
	physics *Physics
	kind    BodyType
	body    *cp.Body

	mu             sync.Mutex
	name           string
	shapes         []attachment
	scene          *Scene
	kinematic      bool
	mass           float64
	moment         float64
	angularDamping float64
	target         *Pose
	released       bool

	UserData any
}

func newRigidBody(p *Physics, kind BodyType, pose Pose) *RigidBody {
	rb := &RigidBody{physics: p, kind: kind, mass: 1, moment: 1}
	if kind == BodyStatic {
		rb.body = cp.NewStaticBody()
	} else {
		rb.body = cp.NewBody(rb.mass, rb.moment)
		rb.body.SetVelocityUpdateFunc(rb.updateVelocity)
	}
	rb.body.SetPosition(toVector(pose.P))
	rb.body.SetAngle(pose.Angle)
	rb.body.UserData = rb
	return rb
}

// updateVelocity integrates gravity and applies angular damping.
func (rb *RigidBody) updateVelocity(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
	cp.BodyUpdateVelocity(body, gravity, damping, dt)
	if body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	if d := rb.angularDamping; d > 0 {
		body.SetAngularVelocity(body.AngularVelocity() * math.Max(0, 1-dt*d))
	}
}

func (rb *RigidBody) Type() BodyType { return rb.kind }

// Name returns the debug name, or "" when unnamed.
func (rb *RigidBody) Name() string {
	if rb == nil {
		return ""
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.name
}

func (rb *RigidBody) SetName(name string) {
	if rb == nil {
		return
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.name = name
}

// Scene returns the scene the actor belongs to, if any.
func (rb *RigidBody) Scene() *Scene {
	if rb == nil {
		return nil
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.scene
}

func (rb *RigidBody) setScene(s *Scene) {
	rb.mu.Lock()
	rb.scene = s
	rb.mu.Unlock()
}

// Released reports whether Release has been called.
func (rb *RigidBody) Released() bool {
	if rb == nil {
		return true
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.released
}

// Shapes returns the attached shapes.
func (rb *RigidBody) Shapes() []*Shape {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	out := make([]*Shape, 0, len(rb.shapes))
	for _, a := range rb.shapes {
		out = append(out, a.shape)
	}
	return out
}

// AttachShape adds a reference to s and instantiates it on the body. Shapes
// cannot be attached while the actor is in a scene.
func (rb *RigidBody) AttachShape(s *Shape) error {
	if rb == nil || s == nil {
		return ErrReleased
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.released {
		return ErrReleased
	}
	if rb.scene != nil {
		return fmt.Errorf("physics: attach shape to %q: %w", rb.name, ErrSceneLocked)
	}
	if s.geometry.staticOnly() && rb.kind != BodyStatic {
		return fmt.Errorf("physics: attach shape to %q: %w", rb.name, ErrInvalidGeometry)
	}
	if s.RefCount() == 0 {
		return ErrReleased
	}
	s.retain()
	rb.shapes = append(rb.shapes, attachment{shape: s, instance: s.instantiate(rb)})
	return nil
}

func (rb *RigidBody) detachAllLocked() {
	for _, a := range rb.shapes {
		a.shape.forget(rb)
		a.shape.release()
	}
	rb.shapes = nil
}

// GlobalPose returns the current world pose.
func (rb *RigidBody) GlobalPose() Pose {
	return Pose{P: fromVector(rb.body.Position()), Angle: rb.body.Angle()}
}

// SetGlobalPose teleports the actor.
func (rb *RigidBody) SetGlobalPose(p Pose) error {
	if rb == nil {
		return ErrReleased
	}
	s := rb.Scene()
	if s != nil && s.Locked() {
		return ErrSceneLocked
	}
	rb.body.SetPosition(toVector(p.P))
	rb.body.SetAngle(p.Angle)
	if s == nil {
		return nil
	}
	if rb.kind == BodyStatic {
		// static shapes keep their cached bounds until re-added
		rb.mu.Lock()
		instances := make([]*cp.Shape, 0, len(rb.shapes))
		for _, a := range rb.shapes {
			instances = append(instances, a.instance)
		}
		rb.mu.Unlock()
		for _, cs := range instances {
			s.space.RemoveShape(cs)
			s.space.AddShape(cs)
		}
	} else if !rb.IsKinematic() {
		rb.body.Activate()
	}
	return nil
}

// LinearVelocity returns the current linear velocity.
func (rb *RigidBody) LinearVelocity() mgl64.Vec2 {
	return fromVector(rb.body.Velocity())
}

// SetLinearVelocity sets the linear velocity. Kinematic actors keep moving
// at that velocity until changed.
func (rb *RigidBody) SetLinearVelocity(v mgl64.Vec2, autowake bool) error {
	if rb == nil {
		return ErrReleased
	}
	if rb.kind == BodyStatic {
		return ErrStaticActor
	}
	s := rb.Scene()
	if s != nil && s.Locked() {
		return ErrSceneLocked
	}
	rb.body.SetVelocityVector(toVector(v))
	if autowake && s != nil && !rb.IsKinematic() {
		rb.body.Activate()
	}
	return nil
}

// AngularDamping returns the damping coefficient applied each step.
func (rb *RigidBody) AngularDamping() float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.angularDamping
}

func (rb *RigidBody) SetAngularDamping(d float64) {
	if rb == nil || d < 0 {
		return
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.angularDamping = d
}

// Mass returns the mass last assigned through UpdateMassAndInertia.
func (rb *RigidBody) Mass() float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.mass
}

// UpdateMassAndInertia sets the body's total mass and derives its moment of
// inertia from the attached shapes, splitting the mass by shape area.
func (rb *RigidBody) UpdateMassAndInertia(mass float64) error {
	if rb == nil {
		return ErrReleased
	}
	if rb.kind == BodyStatic {
		return ErrStaticActor
	}
	if !positive(mass) {
		return fmt.Errorf("physics: mass %v: %w", mass, ErrInvalidGeometry)
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	var area float64
	for _, a := range rb.shapes {
		area += a.shape.geometry.Area()
	}
	moment := 0.0
	for _, a := range rb.shapes {
		share := mass
		if area > 0 {
			share = mass * a.shape.geometry.Area() / area
		}
		moment += a.shape.geometry.moment(share)
	}
	if moment <= 0 {
		moment = 1
	}
	rb.mass = mass
	rb.moment = moment
	if !rb.kinematic {
		rb.body.SetMass(mass)
		rb.body.SetMoment(moment)
	}
	return nil
}

// IsKinematic reports whether the actor is driven by explicit poses.
func (rb *RigidBody) IsKinematic() bool {
	if rb == nil {
		return false
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.kinematic
}

// SetKinematic switches a dynamic actor between solver-driven and
// pose-driven.
func (rb *RigidBody) SetKinematic(on bool) error {
	if rb == nil {
		return ErrReleased
	}
	if rb.kind == BodyStatic {
		return ErrStaticActor
	}
	if s := rb.Scene(); s != nil && s.Locked() {
		return ErrSceneLocked
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.kinematic == on {
		return nil
	}
	rb.kinematic = on
	if on {
		rb.body.SetType(cp.BODY_KINEMATIC)
		return nil
	}
	rb.target = nil
	rb.body.SetType(cp.BODY_DYNAMIC)
	rb.body.SetMass(rb.mass)
	rb.body.SetMoment(rb.moment)
	return nil
}

// SetKinematicTarget moves a kinematic actor to p over the next step. The
// actor must be in a scene.
func (rb *RigidBody) SetKinematicTarget(p Pose) error {
	if rb == nil {
		return ErrReleased
	}
	s := rb.Scene()
	if s == nil {
		return ErrNotInScene
	}
	if s.Locked() {
		return ErrSceneLocked
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if !rb.kinematic {
		return ErrNotKinematic
	}
	target := p
	rb.target = &target
	return nil
}

// KinematicTarget returns the pending target, if any.
func (rb *RigidBody) KinematicTarget() (Pose, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.target == nil {
		return Pose{}, false
	}
	return *rb.target, true
}

// beginTargetStep converts a pending target into the velocity that reaches
// it in dt and returns the velocity to restore afterwards.
func (rb *RigidBody) beginTargetStep(dt float64) (cp.Vector, float64, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.target == nil || !rb.kinematic || dt <= 0 {
		return cp.Vector{}, 0, false
	}
	prevV, prevW := rb.body.Velocity(), rb.body.AngularVelocity()
	pos := rb.body.Position()
	dp := toVector(rb.target.P).Sub(pos)
	rb.body.SetVelocityVector(dp.Mult(1 / dt))
	rb.body.SetAngularVelocity((rb.target.Angle - rb.body.Angle()) / dt)
	rb.target = nil
	return prevV, prevW, true
}

func (rb *RigidBody) attributes() FilterObjectAttributes {
	if rb.kind == BodyStatic {
		return FilterObjectRigidStatic
	}
	if rb.kinematic {
		return FilterObjectRigidDynamic | FilterObjectKinematic
	}
	return FilterObjectRigidDynamic
}

// Release removes the actor from its scene, drops its shape references and
// frees it. Releasing twice is a no-op. While its scene is stepping the actor
// stays live and ErrSceneLocked is returned.
func (rb *RigidBody) Release() error {
	if rb == nil {
		return nil
	}
	if s := rb.Scene(); s != nil {
		if err := s.RemoveActor(rb); err != nil {
			return fmt.Errorf("physics: release %q: %w", rb.Name(), err)
		}
	}
	rb.mu.Lock()
	if rb.released {
		rb.mu.Unlock()
		return nil
	}
	rb.released = true
	rb.detachAllLocked()
	rb.mu.Unlock()
	rb.physics.foundation.Untrack(KindBody)
	return nil
}
