package physics

import (
	"errors"
	"sync"

	"github.com/jakecoffman/cp"
)

// ShapeFlags control how a shape takes part in the simulation.
type ShapeFlags uint8

const (
	ShapeSimulation ShapeFlags = 1 << iota
	ShapeTrigger
)

// ErrInvalidShapeFlags is returned when a shape would be both a simulation
// shape and a trigger.
var ErrInvalidShapeFlags = errors.New("physics: shape cannot be both simulation and trigger")

// collisionTypeActor tags every engine shape created through the facade so a
// single handler sees all pairs.
const collisionTypeActor cp.CollisionType = 1

// Shape is a geometry plus material, filter data and flags. It is reference
// counted: the creator holds one reference and every attached body holds one.
// Attaching a shape to a body creates a private engine instance of it.
type Shape struct {
	physics  *Physics
	geometry Geometry
	material *Material

	mu        sync.Mutex
	filter    FilterData
	flags     ShapeFlags
	refs      int
	instances map[*RigidBody]*cp.Shape
}

// instance is stored in the engine shape's UserData.
type instance struct {
	shape *Shape
	body  *RigidBody
}

func (s *Shape) Geometry() Geometry  { return s.geometry }
func (s *Shape) Material() *Material { return s.material }

// SetSimulationFilterData replaces the filter tag seen by the filter shader.
func (s *Shape) SetSimulationFilterData(fd FilterData) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = fd
}

func (s *Shape) SimulationFilterData() FilterData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Shape) Flags() ShapeFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// IsTrigger reports whether the shape only produces trigger events.
func (s *Shape) IsTrigger() bool {
	return s.Flags()&ShapeTrigger != 0
}

// SetFlag turns one flag on or off.
func (s *Shape) SetFlag(flag ShapeFlags, on bool) error {
	if s == nil {
		return ErrReleased
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.flags &^ flag
	if on {
		next |= flag
	}
	if next&ShapeSimulation != 0 && next&ShapeTrigger != 0 {
		return ErrInvalidShapeFlags
	}
	s.flags = next
	for _, inst := range s.instances {
		inst.SetSensor(next&ShapeTrigger != 0)
	}
	return nil
}

// RefCount returns the number of outstanding references.
func (s *Shape) RefCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Release drops the creator's reference.
func (s *Shape) Release() {
	if s == nil {
		return
	}
	s.release()
}

func (s *Shape) retain() {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
}

func (s *Shape) release() {
	s.mu.Lock()
	if s.refs <= 0 {
		s.mu.Unlock()
		return
	}
	s.refs--
	last := s.refs == 0
	s.mu.Unlock()
	if !last {
		return
	}
	s.material.removeUser()
	s.physics.foundation.Untrack(KindShape)
}

func (s *Shape) instantiate(b *RigidBody) *cp.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs := s.geometry.build(b.body)
	cs.SetCollisionType(collisionTypeActor)
	cs.SetSensor(s.flags&ShapeTrigger != 0)
	cs.UserData = &instance{shape: s, body: b}
	s.instances[b] = cs
	s.material.bind(cs)
	return cs
}

func (s *Shape) forget(b *RigidBody) {
	s.mu.Lock()
	cs, ok := s.instances[b]
	delete(s.instances, b)
	s.mu.Unlock()
	if ok {
		s.material.unbind(cs)
	}
}

func instanceOf(cs *cp.Shape) *instance {
	if cs == nil {
		return nil
	}
	inst, _ := cs.UserData.(*instance)
	return inst
}
