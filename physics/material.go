package physics

import (
	"sync"

	"github.com/jakecoffman/cp"
)

// Material holds surface parameters shared by reference between shapes.
// Changes apply to every shape instance already attached to a body.
type Material struct {
	physics *Physics

	mu              sync.Mutex
	staticFriction  float64
	dynamicFriction float64
	restitution     float64
	instances       map[*cp.Shape]struct{}
	users           int
	released        bool
}

func (m *Material) StaticFriction() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staticFriction
}

func (m *Material) DynamicFriction() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dynamicFriction
}

func (m *Material) Restitution() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restitution
}

// Set replaces all three parameters.
func (m *Material) Set(staticFriction, dynamicFriction, restitution float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staticFriction = staticFriction
	m.dynamicFriction = dynamicFriction
	m.restitution = restitution
	for s := range m.instances {
		m.applyLocked(s)
	}
}

// The engine has a single friction coefficient; the dynamic one drives it.
func (m *Material) applyLocked(s *cp.Shape) {
	s.SetFriction(m.dynamicFriction)
	s.SetElasticity(m.restitution)
}

func (m *Material) bind(s *cp.Shape) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[s] = struct{}{}
	m.applyLocked(s)
}

func (m *Material) unbind(s *cp.Shape) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, s)
}

func (m *Material) addUser() {
	m.mu.Lock()
	m.users++
	m.mu.Unlock()
}

func (m *Material) removeUser() {
	m.mu.Lock()
	m.users--
	m.mu.Unlock()
}

// Release frees the material. It fails while any shape still references it.
func (m *Material) Release() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return ErrReleased
	}
	if m.users > 0 {
		m.mu.Unlock()
		return ErrDependentsAlive
	}
	m.released = true
	m.mu.Unlock()

	if m.physics != nil {
		m.physics.forgetMaterial(m)
		m.physics.foundation.Untrack(KindMaterial)
	}
	return nil
}
