package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Physics       PhysicsConfig    `yaml:"physics"`
	Material      MaterialConfig   `yaml:"material"`
	Visualizer    VisualizerConfig `yaml:"visualizer"`
	Filter        FilterConfig     `yaml:"filter"`
	Ground        GroundConfig     `yaml:"ground"`
	Trigger       TriggerConfig    `yaml:"trigger"`
	Box           BoxConfig        `yaml:"box"`
	Box2          BoxConfig        `yaml:"box2"`
	Ball          BallConfig       `yaml:"ball"`
	Stack         StackConfig      `yaml:"stack"`
	Commands      CommandsConfig   `yaml:"commands"`
	Camera        CameraConfig     `yaml:"camera"`
	HeadlessBall  HeadlessBall     `yaml:"headless_ball"`
	InitialStacks int              `yaml:"initial_stacks"`
}

type PhysicsConfig struct {
	Gravity    [2]float64 `yaml:"gravity"`
	Workers    int        `yaml:"workers"`
	Iterations uint       `yaml:"iterations"`
}

type MaterialConfig struct {
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	Restitution     float64 `yaml:"restitution"`
}

type VisualizerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Timeout is the dial timeout as a duration.
func (v VisualizerConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutMs) * time.Millisecond
}

type FilterConfig struct {
	SolveContacts bool `yaml:"solve_contacts"`
}

type GroundConfig struct {
	HalfLength float64 `yaml:"half_length"`
}

type TriggerConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	HalfX float64 `yaml:"half_x"`
	HalfY float64 `yaml:"half_y"`
}

type BoxConfig struct {
	Name       string  `yaml:"name"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	HalfExtent float64 `yaml:"half_extent"`
}

type BallConfig struct {
	Radius         float64 `yaml:"radius"`
	Speed          float64 `yaml:"speed"`
	Mass           float64 `yaml:"mass"`
	AngularDamping float64 `yaml:"angular_damping"`
}

type StackConfig struct {
	Size       int     `yaml:"size"`
	HalfExtent float64 `yaml:"half_extent"`
	Mass       float64 `yaml:"mass"`
	Offset     float64 `yaml:"offset"`
	Spacing    float64 `yaml:"spacing"`
}

type CommandsConfig struct {
	MoveStep     float64    `yaml:"move_step"`
	PushVelocity [2]float64 `yaml:"push_velocity"`
}

type CameraConfig struct {
	X       float64    `yaml:"x"`
	Y       float64    `yaml:"y"`
	Angle   float64    `yaml:"angle"`
	Forward [2]float64 `yaml:"forward"`
}

// HeadlessBall is the ball fired once at startup of a non-interactive run.
type HeadlessBall struct {
	Enabled  bool       `yaml:"enabled"`
	X        float64    `yaml:"x"`
	Y        float64    `yaml:"y"`
	Radius   float64    `yaml:"radius"`
	Velocity [2]float64 `yaml:"velocity"`
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return cfg
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the demo cannot run without.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	pos := func(v float64) bool { return v > 0 && !math.IsInf(v, 0) }

	check(c.Physics.Workers > 0, "physics.workers must be positive, got %d", c.Physics.Workers)
	check(c.Material.StaticFriction >= 0, "material.static_friction must not be negative")
	check(c.Material.DynamicFriction >= 0, "material.dynamic_friction must not be negative")
	check(c.Material.Restitution >= 0 && c.Material.Restitution <= 1, "material.restitution must be in [0,1], got %v", c.Material.Restitution)
	check(c.Visualizer.Port > 0 && c.Visualizer.Port < 65536, "visualizer.port out of range: %d", c.Visualizer.Port)
	check(pos(c.Ground.HalfLength), "ground.half_length must be positive")
	check(pos(c.Trigger.HalfX) && pos(c.Trigger.HalfY), "trigger half extents must be positive")
	check(pos(c.Box.HalfExtent), "box.half_extent must be positive")
	check(pos(c.Box2.HalfExtent), "box2.half_extent must be positive")
	check(pos(c.Ball.Radius), "ball.radius must be positive")
	check(pos(c.Ball.Mass), "ball.mass must be positive")
	check(c.Ball.AngularDamping >= 0, "ball.angular_damping must not be negative")
	check(c.Stack.Size > 0, "stack.size must be positive, got %d", c.Stack.Size)
	check(pos(c.Stack.HalfExtent), "stack.half_extent must be positive")
	check(pos(c.Stack.Mass), "stack.mass must be positive")
	check(c.Stack.Spacing >= 2*float64(c.Stack.Size+1)*c.Stack.HalfExtent,
		"stack.spacing %v overlaps neighbouring stacks", c.Stack.Spacing)
	check(c.Camera.Forward != [2]float64{}, "camera.forward must not be zero")
	check(!c.HeadlessBall.Enabled || pos(c.HeadlessBall.Radius), "headless_ball.radius must be positive")
	check(c.InitialStacks >= 0, "initial_stacks must not be negative")
	return errors.Join(errs...)
}
