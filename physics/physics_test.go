package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/hellosnippet/pvd"
)

const dt = 1.0 / 60.0

type world struct {
	f *Foundation
	p *Physics
	d *Dispatcher
	s *Scene
	m *Material
}

func newWorld(t *testing.T, desc SceneDesc) *world {
	t.Helper()
	f, err := NewFoundation(Version)
	if err != nil {
		t.Fatalf("NewFoundation: %v", err)
	}
	p, err := NewPhysics(f, nil)
	if err != nil {
		t.Fatalf("NewPhysics: %v", err)
	}
	d, err := NewDispatcher(f, 2)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	desc.Dispatcher = d
	s, err := p.CreateScene(desc)
	if err != nil {
		t.Fatalf("CreateScene: %v", err)
	}
	m, err := p.CreateMaterial(0.5, 0.5, 0)
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	return &world{f: f, p: p, d: d, s: s, m: m}
}

func (w *world) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.s.Simulate(dt); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		if _, err := w.s.FetchResults(true); err != nil {
			t.Fatalf("FetchResults: %v", err)
		}
	}
}

func (w *world) release(t *testing.T) {
	t.Helper()
	if err := w.s.Release(); err != nil {
		t.Fatalf("scene release: %v", err)
	}
	if err := w.d.Release(); err != nil {
		t.Fatalf("dispatcher release: %v", err)
	}
	if err := w.p.Release(); err != nil {
		t.Fatalf("physics release: %v", err)
	}
	if err := w.f.Release(); err != nil {
		t.Fatalf("foundation release: %v", err)
	}
	if live := w.f.Stats().Live(); live != 0 {
		t.Fatalf("expected no live handles, got %v", w.f.Stats())
	}
}

func (w *world) ground(t *testing.T) *RigidBody {
	t.Helper()
	g, err := CreatePlane(w.p, Identity, 100, w.m)
	if err != nil {
		t.Fatalf("CreatePlane: %v", err)
	}
	if err := w.s.AddActor(g); err != nil {
		t.Fatalf("AddActor ground: %v", err)
	}
	return g
}

func (w *world) ball(t *testing.T, x, y float64) *RigidBody {
	t.Helper()
	b, err := CreateDynamic(w.p, NewPose(x, y), SphereGeometry{Radius: 1}, w.m, mgl64.Vec2{})
	if err != nil {
		t.Fatalf("CreateDynamic: %v", err)
	}
	b.SetName("ball")
	if err := w.s.AddActor(b); err != nil {
		t.Fatalf("AddActor ball: %v", err)
	}
	return b
}

type recorder struct {
	NopEventCallback
	contacts []ContactPairHeader
	pairs    []ContactPair
	triggers []TriggerPair
}

func (r *recorder) OnContact(h ContactPairHeader, pairs []ContactPair) {
	for _, p := range pairs {
		r.contacts = append(r.contacts, h)
		r.pairs = append(r.pairs, p)
	}
}

func (r *recorder) OnTrigger(pairs []TriggerPair) {
	r.triggers = append(r.triggers, pairs...)
}

func TestFoundationVersionAndRelease(t *testing.T) {
	if _, err := NewFoundation(Version + 1); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}

	f, err := NewFoundation(Version)
	if err != nil {
		t.Fatalf("NewFoundation: %v", err)
	}
	p, err := NewPhysics(f, nil)
	if err != nil {
		t.Fatalf("NewPhysics: %v", err)
	}
	if _, err := NewPhysics(f, nil); !errors.Is(err, ErrPhysicsExists) {
		t.Fatalf("expected ErrPhysicsExists, got %v", err)
	}
	if err := f.Release(); !errors.Is(err, ErrDependentsAlive) {
		t.Fatalf("expected ErrDependentsAlive, got %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("physics release: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("foundation release: %v", err)
	}
	if err := f.Release(); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased on second release, got %v", err)
	}
}

func TestFoundationTracksHandlesByName(t *testing.T) {
	f, err := NewFoundation(Version)
	if err != nil {
		t.Fatalf("NewFoundation: %v", err)
	}
	f.TrackHandle("transport")
	f.TrackHandle("nonsense")
	if got := f.Count(KindTransport); got != 1 {
		t.Fatalf("expected 1 transport, got %d", got)
	}
	f.UntrackHandle("transport")
	if err := f.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestReleaseOrderIsEnforced(t *testing.T) {
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}})
	w.ball(t, 0, 5)

	if err := w.d.Release(); !errors.Is(err, ErrDependentsAlive) {
		t.Fatalf("dispatcher release with scene alive: got %v", err)
	}
	if err := w.p.Release(); !errors.Is(err, ErrDependentsAlive) {
		t.Fatalf("physics release with scene alive: got %v", err)
	}
	if got := w.f.Count(KindBody); got != 1 {
		t.Fatalf("expected 1 live body, got %d", got)
	}
	w.release(t)
}

func TestShapeReferenceCounting(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	shape, err := w.p.CreateShape(BoxGeometry{HalfX: 1, HalfY: 1}, w.m)
	if err != nil {
		t.Fatalf("CreateShape: %v", err)
	}
	var bodies []*RigidBody
	for i := 0; i < 3; i++ {
		b, err := w.p.CreateRigidDynamic(NewPose(float64(i)*3, 0))
		if err != nil {
			t.Fatalf("CreateRigidDynamic: %v", err)
		}
		if err := b.AttachShape(shape); err != nil {
			t.Fatalf("AttachShape: %v", err)
		}
		bodies = append(bodies, b)
	}
	if got := shape.RefCount(); got != 4 {
		t.Fatalf("expected 4 refs, got %d", got)
	}
	shape.Release()
	if got := shape.RefCount(); got != 3 {
		t.Fatalf("expected 3 refs after creator release, got %d", got)
	}
	if got := w.f.Count(KindShape); got != 1 {
		t.Fatalf("shape should still be live, count %d", got)
	}
	if err := w.m.Release(); !errors.Is(err, ErrDependentsAlive) {
		t.Fatalf("material release with users: got %v", err)
	}
	for _, b := range bodies {
		b.Release()
	}
	if got := w.f.Count(KindShape); got != 0 {
		t.Fatalf("expected shape freed, count %d", got)
	}
	w.release(t)
}

func TestShapeFlags(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	shape, err := w.p.CreateShape(BoxGeometry{HalfX: 1, HalfY: 1}, w.m)
	if err != nil {
		t.Fatalf("CreateShape: %v", err)
	}
	defer shape.Release()

	if err := shape.SetFlag(ShapeTrigger, true); !errors.Is(err, ErrInvalidShapeFlags) {
		t.Fatalf("expected ErrInvalidShapeFlags, got %v", err)
	}
	if err := shape.SetFlag(ShapeSimulation, false); err != nil {
		t.Fatalf("clear simulation: %v", err)
	}
	if err := shape.SetFlag(ShapeTrigger, true); err != nil {
		t.Fatalf("set trigger: %v", err)
	}
	if !shape.IsTrigger() {
		t.Fatalf("expected trigger shape")
	}
}

func TestInvalidGeometry(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)

	cases := []struct {
		name string
		g    Geometry
	}{
		{"zero_box", BoxGeometry{}},
		{"negative_radius", SphereGeometry{Radius: -1}},
		{"nan_box", BoxGeometry{HalfX: math.NaN(), HalfY: 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := w.p.CreateShape(c.g, w.m); !errors.Is(err, ErrInvalidGeometry) {
				t.Fatalf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}

	b, err := w.p.CreateRigidDynamic(Identity)
	if err != nil {
		t.Fatalf("CreateRigidDynamic: %v", err)
	}
	defer b.Release()
	if _, err := CreateExclusiveShape(b, PlaneGeometry{HalfLength: 10}, w.m); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("plane on dynamic body: got %v", err)
	}
}

func TestMaterialChangesPropagate(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	b := w.ball(t, 0, 0)

	w.m.Set(0.9, 0.7, 0.3)
	inst := b.shapes[0].instance
	if got := inst.Friction(); got != 0.7 {
		t.Fatalf("expected friction 0.7, got %v", got)
	}
	if got := inst.Elasticity(); got != 0.3 {
		t.Fatalf("expected elasticity 0.3, got %v", got)
	}
	if got := w.m.StaticFriction(); got != 0.9 {
		t.Fatalf("expected static friction 0.9, got %v", got)
	}
}

func TestSceneMembership(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	b := w.ball(t, 0, 0)

	if err := w.s.AddActor(b); !errors.Is(err, ErrAlreadyInScene) {
		t.Fatalf("expected ErrAlreadyInScene, got %v", err)
	}
	if err := w.s.RemoveActor(b); err != nil {
		t.Fatalf("RemoveActor: %v", err)
	}
	if err := w.s.RemoveActor(b); !errors.Is(err, ErrNotInScene) {
		t.Fatalf("expected ErrNotInScene, got %v", err)
	}
	if b.Scene() != nil {
		t.Fatalf("removed body still reports a scene")
	}
	if err := w.s.AddActor(b); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if got := len(w.s.Actors()); got != 1 {
		t.Fatalf("expected 1 actor, got %d", got)
	}
}

func TestSimulateLocksScene(t *testing.T) {
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}})
	defer w.release(t)
	b := w.ball(t, 0, 10)

	if _, err := w.s.FetchResults(true); !errors.Is(err, ErrNoPendingResults) {
		t.Fatalf("expected ErrNoPendingResults, got %v", err)
	}
	if err := w.s.Simulate(0); !errors.Is(err, ErrInvalidTimestep) {
		t.Fatalf("expected ErrInvalidTimestep, got %v", err)
	}
	if err := w.s.Simulate(dt); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !w.s.Locked() {
		t.Fatalf("scene should be locked while simulating")
	}
	if err := w.s.Simulate(dt); !errors.Is(err, ErrSceneLocked) {
		t.Fatalf("second Simulate: got %v", err)
	}
	if err := b.SetGlobalPose(Identity); !errors.Is(err, ErrSceneLocked) {
		t.Fatalf("SetGlobalPose while locked: got %v", err)
	}
	if err := w.s.RemoveActor(b); !errors.Is(err, ErrSceneLocked) {
		t.Fatalf("RemoveActor while locked: got %v", err)
	}
	for {
		done, err := w.s.FetchResults(false)
		if err != nil {
			t.Fatalf("FetchResults: %v", err)
		}
		if done {
			break
		}
	}
	if w.s.Locked() {
		t.Fatalf("scene should be unlocked after FetchResults")
	}
	if vy := b.LinearVelocity().Y(); vy >= 0 {
		t.Fatalf("ball should have started falling, vy=%v", vy)
	}
	if got := w.s.Frames(); got != 1 {
		t.Fatalf("expected 1 frame, got %d", got)
	}
}

func TestTriggerReportsEnter(t *testing.T) {
	rec := &recorder{}
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}, EventCallback: rec})
	defer w.release(t)
	w.ground(t)

	trigger, err := w.p.CreateRigidStatic(NewPose(0, 3))
	if err != nil {
		t.Fatalf("CreateRigidStatic: %v", err)
	}
	shape, err := CreateExclusiveShape(trigger, BoxGeometry{HalfX: 10, HalfY: 2}, w.m)
	if err != nil {
		t.Fatalf("CreateExclusiveShape: %v", err)
	}
	if err := shape.SetFlag(ShapeSimulation, false); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := shape.SetFlag(ShapeTrigger, true); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := w.s.AddActor(trigger); err != nil {
		t.Fatalf("AddActor trigger: %v", err)
	}
	ball := w.ball(t, 0, 10)

	w.step(t, 120)

	if len(rec.triggers) != 1 {
		t.Fatalf("expected 1 trigger event, got %d", len(rec.triggers))
	}
	ev := rec.triggers[0]
	if ev.Status != NotifyTouchFound || ev.TriggerActor != trigger || ev.OtherActor != ball {
		t.Fatalf("unexpected trigger event %+v", ev)
	}
	if y := ball.GlobalPose().P.Y(); math.Abs(y-1) > 0.25 {
		t.Fatalf("ball should rest on the ground through the trigger, y=%v", y)
	}
}

func TestRemovedActorContactLost(t *testing.T) {
	rec := &recorder{}
	shader := func(FilterObjectAttributes, FilterData, FilterObjectAttributes, FilterData) (FilterFlags, PairFlags) {
		return FilterDefault, ContactDefault | NotifyTouchFound | NotifyTouchLost
	}
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}, FilterShader: shader, EventCallback: rec})
	defer w.release(t)
	w.ground(t)
	ball := w.ball(t, 0, 3)
	w.step(t, 90)

	if len(rec.pairs) != 1 || rec.pairs[0].Events != NotifyTouchFound {
		t.Fatalf("expected one touch found, got %+v", rec.pairs)
	}
	if err := w.s.RemoveActor(ball); err != nil {
		t.Fatalf("RemoveActor: %v", err)
	}
	ball.Release()
	w.step(t, 1)

	if len(rec.pairs) != 2 {
		t.Fatalf("expected touch lost after removal, got %d pairs", len(rec.pairs))
	}
	h := rec.contacts[1]
	if rec.pairs[1].Events != NotifyTouchLost {
		t.Fatalf("expected NotifyTouchLost, got %v", rec.pairs[1].Events)
	}
	if h.Flags&(RemovedActor0|RemovedActor1) == 0 {
		t.Fatalf("expected removed actor flag, got %v", h.Flags)
	}
}

func TestFilterKillDropsPair(t *testing.T) {
	rec := &recorder{}
	shader := func(_ FilterObjectAttributes, d0 FilterData, _ FilterObjectAttributes, d1 FilterData) (FilterFlags, PairFlags) {
		if d0.Word0 == 3 || d1.Word0 == 3 {
			return FilterKill, 0
		}
		return FilterDefault, ContactDefault | NotifyTouchFound
	}
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}, FilterShader: shader, EventCallback: rec})
	defer w.release(t)
	w.ground(t)

	ghost, err := w.p.CreateRigidDynamic(NewPose(0, 3))
	if err != nil {
		t.Fatalf("CreateRigidDynamic: %v", err)
	}
	shape, err := CreateExclusiveShape(ghost, SphereGeometry{Radius: 1}, w.m)
	if err != nil {
		t.Fatalf("CreateExclusiveShape: %v", err)
	}
	shape.SetSimulationFilterData(FilterData{Word0: 3})
	if err := w.s.AddActor(ghost); err != nil {
		t.Fatalf("AddActor: %v", err)
	}
	w.step(t, 120)

	if y := ghost.GlobalPose().P.Y(); y > -5 {
		t.Fatalf("killed pair should fall through the ground, y=%v", y)
	}
	if len(rec.pairs) != 0 {
		t.Fatalf("killed pair reported %d contacts", len(rec.pairs))
	}
}

func TestUnsolvedContactsAreReported(t *testing.T) {
	rec := &recorder{}
	shader := func(FilterObjectAttributes, FilterData, FilterObjectAttributes, FilterData) (FilterFlags, PairFlags) {
		return FilterDefault, DetectDiscreteContact | NotifyTouchFound
	}
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}, FilterShader: shader, EventCallback: rec})
	defer w.release(t)
	w.ground(t)
	ball := w.ball(t, 0, 3)
	w.step(t, 120)

	if len(rec.pairs) != 1 {
		t.Fatalf("expected one touch found, got %d", len(rec.pairs))
	}
	if y := ball.GlobalPose().P.Y(); y > 0 {
		t.Fatalf("unsolved contact should let the ball sink, y=%v", y)
	}
}

func TestKinematicTarget(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	box, err := CreateDynamic(w.p, Identity, BoxGeometry{HalfX: 2, HalfY: 2}, w.m, mgl64.Vec2{})
	if err != nil {
		t.Fatalf("CreateDynamic: %v", err)
	}
	if err := box.SetKinematic(true); err != nil {
		t.Fatalf("SetKinematic: %v", err)
	}
	if err := box.SetKinematicTarget(NewPose(1, 0)); !errors.Is(err, ErrNotInScene) {
		t.Fatalf("target outside scene: got %v", err)
	}
	if err := w.s.AddActor(box); err != nil {
		t.Fatalf("AddActor: %v", err)
	}
	if err := box.SetKinematicTarget(NewPose(1, 0)); err != nil {
		t.Fatalf("SetKinematicTarget: %v", err)
	}
	w.step(t, 1)

	if x := box.GlobalPose().P.X(); math.Abs(x-1) > 1e-6 {
		t.Fatalf("expected box at x=1, got %v", x)
	}
	if v := box.LinearVelocity(); v.Len() > 1e-9 {
		t.Fatalf("velocity should be restored after target step, got %v", v)
	}

	if err := box.SetKinematic(false); err != nil {
		t.Fatalf("SetKinematic(false): %v", err)
	}
	if err := box.SetKinematicTarget(NewPose(2, 0)); !errors.Is(err, ErrNotKinematic) {
		t.Fatalf("expected ErrNotKinematic, got %v", err)
	}
	if got := box.Mass(); got != 1 {
		t.Fatalf("mass should survive the kinematic round trip, got %v", got)
	}
}

func TestAngularDamping(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	b := w.ball(t, 0, 0)
	b.SetAngularDamping(0.5)
	b.body.SetAngularVelocity(10)
	w.step(t, 60)

	got := b.body.AngularVelocity()
	if got >= 10 || got <= 5 {
		t.Fatalf("expected damped angular velocity in (5, 10), got %v", got)
	}
}

func TestStaticActorRejectsDynamics(t *testing.T) {
	w := newWorld(t, SceneDesc{})
	defer w.release(t)
	g := w.ground(t)
	if err := g.SetLinearVelocity(mgl64.Vec2{1, 0}, true); !errors.Is(err, ErrStaticActor) {
		t.Fatalf("expected ErrStaticActor, got %v", err)
	}
	if err := g.SetKinematic(true); !errors.Is(err, ErrStaticActor) {
		t.Fatalf("expected ErrStaticActor, got %v", err)
	}
}

func TestDispatcherRunsAllTasks(t *testing.T) {
	f, err := NewFoundation(Version)
	if err != nil {
		t.Fatalf("NewFoundation: %v", err)
	}
	d, err := NewDispatcher(f, 2)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	results := make([]int, 5)
	tasks := make([]func(), len(results))
	for i := range tasks {
		i := i
		tasks[i] = func() { results[i] = i + 1 }
	}
	<-d.Run(tasks...)
	for i, r := range results {
		if r != i+1 {
			t.Fatalf("task %d did not run", i)
		}
	}
	if err := d.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("foundation Release: %v", err)
	}
}

func TestPoseTransform(t *testing.T) {
	base := Pose{P: mgl64.Vec2{1, 2}, Angle: math.Pi / 2}
	got := base.TransformPoint(mgl64.Vec2{1, 0})
	if !got.ApproxEqualThreshold(mgl64.Vec2{1, 3}, 1e-9) {
		t.Fatalf("expected (1,3), got %v", got)
	}
	composed := base.Transform(NewPose(0, 1))
	if !composed.P.ApproxEqualThreshold(mgl64.Vec2{0, 2}, 1e-9) || composed.Angle != math.Pi/2 {
		t.Fatalf("unexpected composed pose %+v", composed)
	}
}

func TestMovedStaticActorCollidesAtNewPose(t *testing.T) {
	rec := &recorder{}
	shader := func(FilterObjectAttributes, FilterData, FilterObjectAttributes, FilterData) (FilterFlags, PairFlags) {
		return FilterDefault, ContactDefault | NotifyTouchFound
	}
	w := newWorld(t, SceneDesc{FilterShader: shader, EventCallback: rec})
	defer w.release(t)

	wall, err := w.p.CreateRigidStatic(NewPose(50, 0))
	if err != nil {
		t.Fatalf("CreateRigidStatic: %v", err)
	}
	if _, err := CreateExclusiveShape(wall, BoxGeometry{HalfX: 2, HalfY: 2}, w.m); err != nil {
		t.Fatalf("CreateExclusiveShape: %v", err)
	}
	wall.SetName("wall")
	if err := w.s.AddActor(wall); err != nil {
		t.Fatalf("AddActor wall: %v", err)
	}
	ball := w.ball(t, 0, 20)
	w.step(t, 2)
	if len(rec.pairs) != 0 {
		t.Fatalf("no contact expected before the move, got %d", len(rec.pairs))
	}

	if err := wall.SetGlobalPose(NewPose(0, 20)); err != nil {
		t.Fatalf("SetGlobalPose: %v", err)
	}
	if p := wall.GlobalPose().P; !p.ApproxEqualThreshold(mgl64.Vec2{0, 20}, 1e-9) {
		t.Fatalf("wall not moved, at %v", p)
	}
	w.step(t, 1)

	if len(rec.pairs) != 1 || rec.pairs[0].Events != NotifyTouchFound {
		t.Fatalf("expected one touch found at the new pose, got %+v", rec.pairs)
	}
	h := rec.contacts[0]
	if !(h.Actors[0] == wall && h.Actors[1] == ball) && !(h.Actors[0] == ball && h.Actors[1] == wall) {
		t.Fatalf("unexpected actors %q and %q", h.Actors[0].Name(), h.Actors[1].Name())
	}
}

func TestReleaseDuringStepKeepsActor(t *testing.T) {
	w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}})
	defer w.release(t)
	ball := w.ball(t, 0, 10)

	if err := w.s.Simulate(dt); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if err := ball.Release(); !errors.Is(err, ErrSceneLocked) {
		t.Fatalf("expected ErrSceneLocked, got %v", err)
	}
	if ball.Released() || ball.Scene() != w.s || len(w.s.Actors()) != 1 {
		t.Fatalf("ball must stay live in the scene while stepping")
	}
	if _, err := w.s.FetchResults(true); err != nil {
		t.Fatalf("FetchResults: %v", err)
	}

	if err := ball.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !ball.Released() || len(w.s.Actors()) != 0 {
		t.Fatalf("ball should be gone after release")
	}
	if err := ball.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestSnapshotCarriesTransmitFlags(t *testing.T) {
	tests := []struct {
		name     string
		flags    []pvd.SceneFlags
		contacts bool
	}{
		{"none", nil, false},
		{"contacts", []pvd.SceneFlags{pvd.TransmitContacts}, true},
		{"all", []pvd.SceneFlags{pvd.TransmitContacts, pvd.TransmitConstraints, pvd.TransmitSceneQueries}, true},
		{"constraints_only", []pvd.SceneFlags{pvd.TransmitConstraints}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld(t, SceneDesc{Gravity: mgl64.Vec2{0, -9.81}})
			defer w.release(t)
			w.ground(t)
			w.ball(t, 0, 0.5)
			w.step(t, 2)

			var want pvd.SceneFlags
			for _, f := range tc.flags {
				w.s.SetVisualizerFlag(f, true)
				want |= f
			}
			w.s.mu.Lock()
			frame := w.s.snapshotLocked()
			w.s.mu.Unlock()

			if frame.Flags != want {
				t.Fatalf("expected flags %03b, got %03b", want, frame.Flags)
			}
			if got := len(frame.Contacts) > 0; got != tc.contacts {
				t.Fatalf("expected contacts mirrored=%v, got %+v", tc.contacts, frame.Contacts)
			}
			if len(frame.Bodies) != 2 {
				t.Fatalf("expected 2 bodies, got %d", len(frame.Bodies))
			}
		})
	}
}
