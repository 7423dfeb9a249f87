package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/hellosnippet/pvd"
)

// ErrPhysicsExists is returned when a foundation already has a live Physics.
var ErrPhysicsExists = errors.New("physics: foundation already has a physics object")

// Physics is the factory for materials, shapes, bodies and scenes.
type Physics struct {
	foundation *Foundation
	visualizer *pvd.Visualizer

	mu        sync.Mutex
	materials map[*Material]struct{}
	scenes    map[*Scene]struct{}
	released  bool
}

// NewPhysics creates the factory. Only one may exist per foundation. The
// visualizer is optional.
func NewPhysics(f *Foundation, v *pvd.Visualizer) (*Physics, error) {
	if f == nil || f.Released() {
		return nil, ErrReleased
	}
	if f.Count(KindPhysics) > 0 {
		return nil, ErrPhysicsExists
	}
	f.Track(KindPhysics)
	return &Physics{
		foundation: f,
		visualizer: v,
		materials:  make(map[*Material]struct{}),
		scenes:     make(map[*Scene]struct{}),
	}, nil
}

func (p *Physics) Foundation() *Foundation { return p.foundation }

// Visualizer returns the debug visualizer, or nil.
func (p *Physics) Visualizer() *pvd.Visualizer {
	if p == nil {
		return nil
	}
	return p.visualizer
}

func (p *Physics) live() error {
	if p == nil {
		return ErrReleased
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	return nil
}

// CreateMaterial returns a new material with the given parameters.
func (p *Physics) CreateMaterial(staticFriction, dynamicFriction, restitution float64) (*Material, error) {
	if err := p.live(); err != nil {
		return nil, err
	}
	m := &Material{
		physics:         p,
		staticFriction:  staticFriction,
		dynamicFriction: dynamicFriction,
		restitution:     restitution,
		instances:       make(map[*cp.Shape]struct{}),
	}
	p.mu.Lock()
	p.materials[m] = struct{}{}
	p.mu.Unlock()
	p.foundation.Track(KindMaterial)
	return m, nil
}

func (p *Physics) forgetMaterial(m *Material) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.materials, m)
}

// CreateShape returns a shape holding one reference for the caller. The
// shape starts as a simulation and scene-query shape.
func (p *Physics) CreateShape(g Geometry, m *Material) (*Shape, error) {
	if err := p.live(); err != nil {
		return nil, err
	}
	if g == nil || !g.Valid() {
		return nil, fmt.Errorf("physics: create shape: %w", ErrInvalidGeometry)
	}
	if m == nil {
		return nil, fmt.Errorf("physics: create shape: nil material: %w", ErrReleased)
	}
	m.mu.Lock()
	dead := m.released
	m.mu.Unlock()
	if dead {
		return nil, fmt.Errorf("physics: create shape: material: %w", ErrReleased)
	}
	s := &Shape{
		physics:   p,
		geometry:  g,
		material:  m,
		flags:     ShapeSimulation,
		refs:      1,
		instances: make(map[*RigidBody]*cp.Shape),
	}
	m.addUser()
	p.foundation.Track(KindShape)
	return s, nil
}

// CreateRigidDynamic returns a dynamic body at pose.
func (p *Physics) CreateRigidDynamic(pose Pose) (*RigidBody, error) {
	if err := p.live(); err != nil {
		return nil, err
	}
	rb := newRigidBody(p, BodyDynamic, pose)
	p.foundation.Track(KindBody)
	return rb, nil
}

// CreateRigidStatic returns a static body at pose.
func (p *Physics) CreateRigidStatic(pose Pose) (*RigidBody, error) {
	if err := p.live(); err != nil {
		return nil, err
	}
	rb := newRigidBody(p, BodyStatic, pose)
	p.foundation.Track(KindBody)
	return rb, nil
}

// Release frees the factory together with its materials. Scenes and any
// shapes still referencing a material must be released first.
func (p *Physics) Release() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrReleased
	}
	if n := len(p.scenes); n > 0 {
		p.mu.Unlock()
		return fmt.Errorf("%w: %d scene(s)", ErrDependentsAlive, n)
	}
	mats := make([]*Material, 0, len(p.materials))
	for m := range p.materials {
		m.mu.Lock()
		users := m.users
		m.mu.Unlock()
		if users > 0 {
			p.mu.Unlock()
			return fmt.Errorf("%w: material has %d shape(s)", ErrDependentsAlive, users)
		}
		mats = append(mats, m)
	}
	p.released = true
	p.mu.Unlock()

	for _, m := range mats {
		_ = m.Release()
	}
	p.foundation.Untrack(KindPhysics)
	return nil
}
