package snippet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/hellosnippet/config"
	"github.com/milk9111/hellosnippet/physics"
	"github.com/milk9111/hellosnippet/pvd"
)

// Timestep is the fixed simulation step.
const Timestep = 1.0 / 60.0

// Filter words carried in FilterData.Word0.
const (
	FilterStructural  uint32 = 1
	FilterDynamicTest uint32 = 2
)

var ErrNotInitialized = errors.New("snippet: physics not initialized")

// Tag is stored in RigidBody.UserData for actors the demo creates, so the
// trigger report can tell them from untagged actors.
type Tag struct {
	Role string
}

// Demo owns one simulated world and the bodies tracked for interactive
// testing.
type Demo struct {
	cfg *config.Config
	out io.Writer

	foundation *physics.Foundation
	visualizer *pvd.Visualizer
	physics    *physics.Physics
	dispatcher *physics.Dispatcher
	scene      *physics.Scene
	material   *physics.Material

	trigger *physics.RigidBody
	box     *physics.RigidBody
	box2    *physics.RigidBody

	ballIndex   int
	stackOffset float64
}

type Option func(*Demo)

// WithOutput redirects the console lines. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Demo) {
		if w != nil {
			d.out = w
		}
	}
}

// New returns an uninitialized demo. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) *Demo {
	if cfg == nil {
		cfg = config.Default()
	}
	d := &Demo{cfg: cfg, out: os.Stdout, ballIndex: 1, stackOffset: cfg.Stack.Offset}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Demo) Config() *config.Config          { return d.cfg }
func (d *Demo) Foundation() *physics.Foundation { return d.foundation }
func (d *Demo) Scene() *physics.Scene           { return d.scene }
func (d *Demo) Visualizer() *pvd.Visualizer     { return d.visualizer }
func (d *Demo) Box() *physics.RigidBody         { return d.box }
func (d *Demo) Box2() *physics.RigidBody        { return d.box2 }
func (d *Demo) Material() *physics.Material     { return d.material }
func (d *Demo) Initialized() bool               { return d.foundation != nil }
func (d *Demo) filterShader() physics.FilterShader {
	if d.cfg.Filter.SolveContacts {
		return solvingFilterShader
	}
	return ContactReportFilterShader
}

// Camera returns the configured viewpoint used when no front end supplies
// one.
func (d *Demo) Camera() physics.Pose {
	c := d.cfg.Camera
	return physics.Pose{P: mgl64.Vec2{c.X, c.Y}, Angle: c.Angle}
}

// InitPhysics creates the world. Calling it again on an initialized demo is a
// no-op. The debug visualizer connection is best effort.
func (d *Demo) InitPhysics(interactive bool) error {
	if d.Initialized() {
		return nil
	}
	f, err := physics.NewFoundation(physics.Version)
	if err != nil {
		return fmt.Errorf("snippet: create foundation: %w", err)
	}
	d.foundation = f

	d.visualizer = pvd.NewVisualizer(f)
	d.connectVisualizer()

	if err := d.createWorld(interactive); err != nil {
		_ = d.CleanupPhysics()
		return err
	}
	return nil
}

func (d *Demo) connectVisualizer() {
	vc := d.cfg.Visualizer
	t := pvd.NewSocketTransport(d.foundation, vc.Host, vc.Port, vc.Timeout())
	d.visualizer.Connect(t, pvd.InstrumentAll)
	t.Release()
}

func (d *Demo) createWorld(interactive bool) error {
	var err error
	if d.physics, err = physics.NewPhysics(d.foundation, d.visualizer); err != nil {
		return fmt.Errorf("snippet: create physics: %w", err)
	}
	if d.dispatcher, err = physics.NewDispatcher(d.foundation, d.cfg.Physics.Workers); err != nil {
		return fmt.Errorf("snippet: create dispatcher: %w", err)
	}
	g := d.cfg.Physics.Gravity
	d.scene, err = d.physics.CreateScene(physics.SceneDesc{
		Name:          "hello world",
		Gravity:       mgl64.Vec2{g[0], g[1]},
		Dispatcher:    d.dispatcher,
		FilterShader:  d.filterShader(),
		EventCallback: &contactReporter{out: d.out},
		Iterations:    d.cfg.Physics.Iterations,
	})
	if err != nil {
		return fmt.Errorf("snippet: create scene: %w", err)
	}
	d.scene.SetVisualizerFlag(pvd.TransmitConstraints, true)
	d.scene.SetVisualizerFlag(pvd.TransmitContacts, true)
	d.scene.SetVisualizerFlag(pvd.TransmitSceneQueries, true)

	m := d.cfg.Material
	if d.material, err = d.physics.CreateMaterial(m.StaticFriction, m.DynamicFriction, m.Restitution); err != nil {
		return fmt.Errorf("snippet: create material: %w", err)
	}

	ground, err := physics.CreatePlane(d.physics, physics.Identity, d.cfg.Ground.HalfLength, d.material)
	if err != nil {
		return fmt.Errorf("snippet: create ground: %w", err)
	}
	ground.SetName("ground")
	if err := d.scene.AddActor(ground); err != nil {
		ground.Release()
		return fmt.Errorf("snippet: add ground: %w", err)
	}

	for i := 0; i < d.cfg.InitialStacks; i++ {
		if _, err := d.spawnStack(); err != nil {
			return err
		}
	}
	if hb := d.cfg.HeadlessBall; hb.Enabled && !interactive {
		pose := physics.NewPose(hb.X, hb.Y)
		if _, err := d.CreateDynamic(pose, physics.SphereGeometry{Radius: hb.Radius}, mgl64.Vec2{hb.Velocity[0], hb.Velocity[1]}); err != nil {
			return err
		}
	}

	if err := d.createTrigger(); err != nil {
		return err
	}
	return d.createBox()
}

// StepPhysics advances the world by one fixed step and waits for it.
func (d *Demo) StepPhysics() error {
	if d.scene == nil {
		return ErrNotInitialized
	}
	if err := d.scene.Simulate(Timestep); err != nil {
		return fmt.Errorf("snippet: simulate: %w", err)
	}
	if _, err := d.scene.FetchResults(true); err != nil {
		return fmt.Errorf("snippet: fetch results: %w", err)
	}
	return nil
}

// CleanupPhysics releases everything in dependency order and prints the done
// line. It is safe to call on a partially initialized or already cleaned up
// demo.
func (d *Demo) CleanupPhysics() error {
	var errs []error
	if d.scene != nil {
		if err := d.scene.Release(); err != nil {
			errs = append(errs, fmt.Errorf("snippet: release scene: %w", err))
		}
		d.scene = nil
		d.trigger, d.box, d.box2 = nil, nil, nil
	}
	if d.dispatcher != nil {
		if err := d.dispatcher.Release(); err != nil {
			errs = append(errs, fmt.Errorf("snippet: release dispatcher: %w", err))
		}
		d.dispatcher = nil
	}
	if d.physics != nil {
		if err := d.physics.Release(); err != nil {
			errs = append(errs, fmt.Errorf("snippet: release physics: %w", err))
		}
		d.physics = nil
		d.material = nil
	}
	if d.visualizer != nil {
		d.visualizer.Release()
		d.visualizer = nil
	}
	if d.foundation != nil {
		if err := d.foundation.Release(); err != nil {
			errs = append(errs, fmt.Errorf("snippet: release foundation: %w", err))
		}
		d.foundation = nil
	}
	fmt.Fprintln(d.out, "hello world snippet done.")
	return errors.Join(errs...)
}
