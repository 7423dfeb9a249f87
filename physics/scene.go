package physics

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/hellosnippet/pvd"
)

// SceneDesc configures a new scene.
type SceneDesc struct {
	Name          string
	Gravity       mgl64.Vec2
	Dispatcher    *Dispatcher
	FilterShader  FilterShader
	EventCallback SimulationEventCallback
	// Iterations is the solver iteration count; 0 keeps the engine default.
	Iterations uint
}

type kinematicRestore struct {
	body *cp.Body
	v    cp.Vector
	w    float64
}

type actorPair [2]*RigidBody

// Scene is a simulated world. It owns every actor added to it: releasing the
// scene releases them.
type Scene struct {
	physics    *Physics
	name       string
	space      *cp.Space
	dispatcher *Dispatcher
	shader     FilterShader
	callback   SimulationEventCallback

	mu       sync.Mutex
	actors   []*RigidBody
	pending  <-chan struct{}
	restores []kinematicRestore
	pvdFlags pvd.SceneFlags
	frame    uint64
	time     float64
	removing *RigidBody
	released bool
	locked   atomic.Bool
	eventsMu sync.Mutex
	events   []simEvent
	touching map[actorPair]struct{}
}

// CreateScene builds a scene on the given dispatcher. A nil shader accepts
// every pair with DefaultFilterShader.
func (p *Physics) CreateScene(desc SceneDesc) (*Scene, error) {
	if err := p.live(); err != nil {
		return nil, err
	}
	if desc.Dispatcher == nil {
		return nil, ErrNoDispatcher
	}
	if err := desc.Dispatcher.addUser(); err != nil {
		return nil, fmt.Errorf("physics: create scene: dispatcher: %w", err)
	}
	s := &Scene{
		physics:    p,
		name:       desc.Name,
		space:      cp.NewSpace(),
		dispatcher: desc.Dispatcher,
		shader:     desc.FilterShader,
		callback:   desc.EventCallback,
		touching:   make(map[actorPair]struct{}),
	}
	if s.name == "" {
		s.name = "scene"
	}
	if s.shader == nil {
		s.shader = DefaultFilterShader
	}
	if s.callback == nil {
		s.callback = NopEventCallback{}
	}
	s.space.SetGravity(toVector(desc.Gravity))
	if desc.Iterations > 0 {
		s.space.Iterations = desc.Iterations
	}

	handler := s.space.NewCollisionHandler(collisionTypeActor, collisionTypeActor)
	handler.BeginFunc = s.begin
	handler.PreSolveFunc = s.preSolve
	handler.SeparateFunc = s.separate

	p.mu.Lock()
	p.scenes[s] = struct{}{}
	p.mu.Unlock()
	p.foundation.Track(KindScene)
	return s, nil
}

func (s *Scene) Name() string { return s.name }

// Locked reports whether a step is in flight or events are being delivered.
func (s *Scene) Locked() bool {
	return s != nil && s.locked.Load()
}

// Gravity returns the scene gravity.
func (s *Scene) Gravity() mgl64.Vec2 {
	return fromVector(s.space.Gravity())
}

// SetGravity replaces the scene gravity and wakes sleeping bodies.
func (s *Scene) SetGravity(g mgl64.Vec2) error {
	if s == nil {
		return ErrReleased
	}
	if s.Locked() {
		return ErrSceneLocked
	}
	s.space.SetGravity(toVector(g))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actors {
		if a.kind == BodyDynamic && !a.IsKinematic() {
			a.body.Activate()
		}
	}
	return nil
}

// SetVisualizerFlag turns one mirrored data category on or off. Only
// TransmitContacts adds data to mirrored frames: the facade has no joints and
// no scene queries, so the other two flags are only forwarded in Frame.Flags.
func (s *Scene) SetVisualizerFlag(flag pvd.SceneFlags, on bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.pvdFlags |= flag
	} else {
		s.pvdFlags &^= flag
	}
}

func (s *Scene) VisualizerFlags() pvd.SceneFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pvdFlags
}

// Time returns the accumulated simulated time.
func (s *Scene) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

// Frames returns the number of steps started.
func (s *Scene) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Actors returns the scene members in insertion order.
func (s *Scene) Actors() []*RigidBody {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*RigidBody(nil), s.actors...)
}

// Space exposes the engine space for debug drawing. Callers must not mutate
// it.
func (s *Scene) Space() *cp.Space { return s.space }

// AddActor inserts rb into the scene. The scene takes ownership.
func (s *Scene) AddActor(rb *RigidBody) error {
	if s == nil || rb == nil || rb.Released() {
		return ErrReleased
	}
	if s.Locked() {
		return ErrSceneLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if rb.Scene() != nil {
		return fmt.Errorf("physics: add %q: %w", rb.Name(), ErrAlreadyInScene)
	}
	s.space.AddBody(rb.body)
	rb.mu.Lock()
	for _, a := range rb.shapes {
		s.space.AddShape(a.instance)
	}
	rb.mu.Unlock()
	rb.setScene(s)
	s.actors = append(s.actors, rb)
	return nil
}

// RemoveActor takes rb out of the scene without releasing it. Pairs it was
// part of are reported lost at the next FetchResults with the removed-actor
// flag set.
func (s *Scene) RemoveActor(rb *RigidBody) error {
	if s == nil || rb == nil {
		return ErrReleased
	}
	if s.Locked() {
		return ErrSceneLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, a := range s.actors {
		if a == rb {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("physics: remove %q: %w", rb.Name(), ErrNotInScene)
	}

	s.removing = rb
	rb.mu.Lock()
	for _, a := range rb.shapes {
		s.space.RemoveShape(a.instance)
	}
	rb.mu.Unlock()
	s.space.RemoveBody(rb.body)
	s.removing = nil

	s.actors = append(s.actors[:idx], s.actors[idx+1:]...)
	rb.setScene(nil)
	return nil
}

// Simulate starts a step of dt seconds on the dispatcher and returns
// immediately. The scene is locked until FetchResults collects the step.
func (s *Scene) Simulate(dt float64) error {
	if s == nil {
		return ErrReleased
	}
	if !positive(dt) {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	if s.pending != nil || s.locked.Load() {
		return ErrSceneLocked
	}

	s.restores = s.restores[:0]
	for _, a := range s.actors {
		if v, w, ok := a.beginTargetStep(dt); ok {
			s.restores = append(s.restores, kinematicRestore{body: a.body, v: v, w: w})
		}
	}

	vis := s.physics.Visualizer()
	var frame pvd.Frame
	mirror := vis.IsConnected()
	if mirror {
		frame = s.snapshotLocked()
	}

	s.locked.Store(true)
	restores := s.restores
	s.pending = s.dispatcher.Run(
		func() {
			s.space.Step(dt)
			for _, r := range restores {
				r.body.SetVelocityVector(r.v)
				r.body.SetAngularVelocity(r.w)
			}
		},
		func() {
			if !mirror {
				return
			}
			if err := vis.Send(frame); err != nil {
				log.Printf("physics: mirror frame %d: %v", frame.Index, err)
			}
		},
	)
	s.frame++
	s.time += dt
	return nil
}

// FetchResults completes the step started by Simulate. With block set it
// waits for the step; otherwise it returns false when the step is still
// running. Buffered events are delivered to the callback before it returns.
func (s *Scene) FetchResults(block bool) (bool, error) {
	if s == nil {
		return false, ErrReleased
	}
	s.mu.Lock()
	pending := s.pending
	s.mu.Unlock()
	if pending == nil {
		return false, ErrNoPendingResults
	}
	if block {
		<-pending
	} else {
		select {
		case <-pending:
		default:
			return false, nil
		}
	}
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.deliver()
	s.locked.Store(false)
	return true, nil
}

// deliver hands buffered events to the callback. Consecutive contact pairs
// with the same header are reported together.
func (s *Scene) deliver() {
	s.eventsMu.Lock()
	events := s.events
	s.events = nil
	s.eventsMu.Unlock()
	if len(events) == 0 {
		return
	}

	var (
		triggers []TriggerPair
		header   ContactPairHeader
		pairs    []ContactPair
	)
	flush := func() {
		if len(pairs) > 0 {
			s.callback.OnContact(header, pairs)
		}
		pairs = nil
	}
	for _, ev := range events {
		if ev.trigger != nil {
			triggers = append(triggers, *ev.trigger)
			continue
		}
		if len(pairs) > 0 && ev.header != header {
			flush()
		}
		header = ev.header
		pairs = append(pairs, ev.pair)
	}
	flush()
	if len(triggers) > 0 {
		s.callback.OnTrigger(triggers)
	}
}

func (s *Scene) push(ev simEvent) {
	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	s.eventsMu.Unlock()
}

func (s *Scene) filter(a, b *instance) (FilterFlags, PairFlags) {
	attr := func(in *instance) FilterObjectAttributes {
		at := in.body.attributes()
		if in.shape.IsTrigger() {
			at |= FilterObjectTrigger
		}
		return at
	}
	return s.shader(attr(a), a.shape.SimulationFilterData(), attr(b), b.shape.SimulationFilterData())
}

func killed(ff FilterFlags) bool {
	return ff&(FilterKill|FilterSuppress) != 0
}

func (s *Scene) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	ca, cb := arb.Shapes()
	a, b := instanceOf(ca), instanceOf(cb)
	if a == nil || b == nil {
		return true
	}
	if a.shape.IsTrigger() && b.shape.IsTrigger() {
		return false
	}
	ff, pf := s.filter(a, b)
	if killed(ff) {
		return false
	}
	if a.shape.IsTrigger() || b.shape.IsTrigger() {
		if pf&NotifyTouchFound != 0 {
			s.push(simEvent{trigger: triggerPair(a, b, NotifyTouchFound, false)})
		}
		return true
	}
	s.touch(a.body, b.body, true)
	if pf&NotifyTouchFound != 0 {
		s.push(simEvent{
			header: ContactPairHeader{Actors: [2]*RigidBody{a.body, b.body}},
			pair: ContactPair{
				Shapes: [2]*Shape{a.shape, b.shape},
				Events: NotifyTouchFound,
				Normal: fromVector(arb.Normal()),
			},
		})
	}
	return true
}

func (s *Scene) preSolve(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	ca, cb := arb.Shapes()
	a, b := instanceOf(ca), instanceOf(cb)
	if a == nil || b == nil {
		return true
	}
	_, pf := s.filter(a, b)
	return pf&SolveContact != 0
}

func (s *Scene) separate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	ca, cb := arb.Shapes()
	a, b := instanceOf(ca), instanceOf(cb)
	if a == nil || b == nil {
		return
	}
	if a.shape.IsTrigger() && b.shape.IsTrigger() {
		return
	}
	ff, pf := s.filter(a, b)
	if killed(ff) {
		return
	}
	removed := s.removing != nil && (s.removing == a.body || s.removing == b.body)
	trigger := a.shape.IsTrigger() || b.shape.IsTrigger()
	if !trigger {
		s.touch(a.body, b.body, false)
	}
	if pf&NotifyTouchLost == 0 {
		return
	}
	if trigger {
		s.push(simEvent{trigger: triggerPair(a, b, NotifyTouchLost, removed)})
		return
	}
	var hf ContactPairHeaderFlags
	if s.removing == a.body {
		hf |= RemovedActor0
	}
	if s.removing == b.body {
		hf |= RemovedActor1
	}
	s.push(simEvent{
		header: ContactPairHeader{Actors: [2]*RigidBody{a.body, b.body}, Flags: hf},
		pair: ContactPair{
			Shapes: [2]*Shape{a.shape, b.shape},
			Events: NotifyTouchLost,
		},
	})
}

func triggerPair(a, b *instance, status PairFlags, removed bool) *TriggerPair {
	if !a.shape.IsTrigger() {
		a, b = b, a
	}
	return &TriggerPair{
		TriggerShape: a.shape,
		TriggerActor: a.body,
		OtherShape:   b.shape,
		OtherActor:   b.body,
		Status:       status,
		Removed:      removed,
	}
}

func (s *Scene) touch(a, b *RigidBody, on bool) {
	key := actorPair{a, b}
	if on {
		s.eventsMu.Lock()
		s.touching[key] = struct{}{}
		s.eventsMu.Unlock()
		return
	}
	s.eventsMu.Lock()
	delete(s.touching, key)
	delete(s.touching, actorPair{b, a})
	s.eventsMu.Unlock()
}

// snapshotLocked captures the scene for the visualizer. s.mu must be held.
func (s *Scene) snapshotLocked() pvd.Frame {
	g := s.space.Gravity()
	frame := pvd.Frame{
		Scene:   s.name,
		Index:   s.frame,
		Time:    s.time,
		Gravity: [2]float64{g.X, g.Y},
		Flags:   s.pvdFlags,
		Bodies:  make([]pvd.BodyState, 0, len(s.actors)),
	}
	for _, a := range s.actors {
		pos, vel := a.body.Position(), a.body.Velocity()
		typ := a.kind.String()
		if a.IsKinematic() {
			typ = "kinematic"
		}
		shapes := a.Shapes()
		trigger := false
		for _, sh := range shapes {
			trigger = trigger || sh.IsTrigger()
		}
		frame.Bodies = append(frame.Bodies, pvd.BodyState{
			Name:    a.Name(),
			Type:    typ,
			X:       pos.X,
			Y:       pos.Y,
			Angle:   a.body.Angle(),
			VX:      vel.X,
			VY:      vel.Y,
			Shapes:  len(shapes),
			Trigger: trigger,
		})
	}
	if s.pvdFlags&pvd.TransmitContacts != 0 {
		s.eventsMu.Lock()
		pairs := make([]actorPair, 0, len(s.touching))
		for pair := range s.touching {
			pairs = append(pairs, pair)
		}
		s.eventsMu.Unlock()
		for _, pair := range pairs {
			frame.Contacts = append(frame.Contacts, pvd.ContactState{A: pair[0].Name(), B: pair[1].Name()})
		}
	}
	return frame
}

// Release removes and releases every actor, then frees the scene. It fails
// while a step is in flight.
func (s *Scene) Release() error {
	if s == nil {
		return nil
	}
	if s.Locked() {
		return ErrSceneLocked
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return ErrReleased
	}
	actors := append([]*RigidBody(nil), s.actors...)
	s.mu.Unlock()

	for i := len(actors) - 1; i >= 0; i-- {
		if err := actors[i].Release(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.released = true
	s.mu.Unlock()

	s.eventsMu.Lock()
	s.events = nil
	s.eventsMu.Unlock()

	s.dispatcher.removeUser()
	s.physics.mu.Lock()
	delete(s.physics.scenes, s)
	s.physics.mu.Unlock()
	s.physics.foundation.Untrack(KindScene)
	return nil
}
