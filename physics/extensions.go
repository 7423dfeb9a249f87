package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// CreateExclusiveShape creates a shape and attaches it to rb. The body holds
// the only reference.
func CreateExclusiveShape(rb *RigidBody, g Geometry, m *Material) (*Shape, error) {
	if rb == nil {
		return nil, ErrReleased
	}
	s, err := rb.physics.CreateShape(g, m)
	if err != nil {
		return nil, err
	}
	defer s.Release()
	if err := rb.AttachShape(s); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateDynamic builds a dynamic body with one exclusive shape and the given
// initial velocity. Mass defaults to 1 until UpdateMassAndInertia is called.
func CreateDynamic(p *Physics, pose Pose, g Geometry, m *Material, velocity mgl64.Vec2) (*RigidBody, error) {
	rb, err := p.CreateRigidDynamic(pose)
	if err != nil {
		return nil, err
	}
	if _, err := CreateExclusiveShape(rb, g, m); err != nil {
		rb.Release()
		return nil, fmt.Errorf("physics: create dynamic: %w", err)
	}
	if err := rb.UpdateMassAndInertia(1); err != nil {
		rb.Release()
		return nil, err
	}
	if err := rb.SetLinearVelocity(velocity, true); err != nil {
		rb.Release()
		return nil, err
	}
	return rb, nil
}

// CreatePlane builds a static ground surface through the origin of pose,
// with the solid side below the pose's local x axis.
func CreatePlane(p *Physics, pose Pose, halfLength float64, m *Material) (*RigidBody, error) {
	rb, err := p.CreateRigidStatic(pose)
	if err != nil {
		return nil, err
	}
	if _, err := CreateExclusiveShape(rb, PlaneGeometry{HalfLength: halfLength}, m); err != nil {
		rb.Release()
		return nil, fmt.Errorf("physics: create plane: %w", err)
	}
	return rb, nil
}
