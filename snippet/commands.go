package snippet

import (
	"fmt"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/hellosnippet/physics"
)

// Command is one entry of the key table.
type Command struct {
	Key         byte
	Description string
	run         func(d *Demo, camera physics.Pose) error
}

var commands = map[byte]Command{
	'B': {Key: 'B', Description: "spawn a stack of boxes", run: func(d *Demo, _ physics.Pose) error {
		_, err := d.spawnStack()
		return err
	}},
	' ': {Key: ' ', Description: "fire a ball from the camera", run: func(d *Demo, camera physics.Pose) error {
		_, err := d.fire(camera)
		return err
	}},
	'M': {Key: 'M', Description: "move box1 along +x", run: func(d *Demo, _ physics.Pose) error { return d.MoveBox() }},
	'N': {Key: 'N', Description: "push box1", run: func(d *Demo, _ physics.Pose) error { return d.MoveBoxForce() }},
	'R': {Key: 'R', Description: "remove box1", run: func(d *Demo, _ physics.Pose) error { return d.DelBox() }},
	'C': {Key: 'C', Description: "recreate box2", run: func(d *Demo, _ physics.Pose) error {
		_, err := d.CreateBox2()
		return err
	}},
	'Z': {Key: 'Z', Description: "move box2 by kinematic target", run: func(d *Demo, _ physics.Pose) error { return d.MoveBox2() }},
	'X': {Key: 'X', Description: "push box2", run: func(d *Demo, _ physics.Pose) error { return d.MoveBoxForce2() }},
	'K': {Key: 'K', Description: "reconnect the visualizer", run: func(d *Demo, _ physics.Pose) error {
		d.ReconnectVisualizer()
		return nil
	}},
}

// Commands lists the key table ordered by key.
func Commands() []Command {
	out := make([]Command, 0, len(commands))
	for _, c := range commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// KeyName renders a command key for display.
func KeyName(k byte) string {
	if k == ' ' {
		return "space"
	}
	return string(k)
}

func upper(k byte) byte {
	if k >= 'a' && k <= 'z' {
		return k - 'a' + 'A'
	}
	return k
}

// KeyPress runs the command bound to key. Unknown keys are ignored and
// report false.
func (d *Demo) KeyPress(key byte, camera physics.Pose) (bool, error) {
	cmd, ok := commands[upper(key)]
	if !ok {
		return false, nil
	}
	if d.scene == nil {
		return true, ErrNotInitialized
	}
	if err := cmd.run(d, camera); err != nil {
		return true, fmt.Errorf("snippet: key %q: %w", KeyName(cmd.Key), err)
	}
	return true, nil
}

func (d *Demo) fire(camera physics.Pose) (*physics.RigidBody, error) {
	f := d.cfg.Camera.Forward
	dir := mgl64.Vec2{f[0], f[1]}.Normalize()
	velocity := camera.Rotate(dir).Mul(d.cfg.Ball.Speed)
	return d.CreateDynamic(camera, physics.SphereGeometry{Radius: d.cfg.Ball.Radius}, velocity)
}

func (d *Demo) pushVelocity() mgl64.Vec2 {
	v := d.cfg.Commands.PushVelocity
	return mgl64.Vec2{v[0], v[1]}
}

// MoveBox teleports box1 one step along +x.
func (d *Demo) MoveBox() error {
	if d.box == nil {
		return nil
	}
	pose := d.box.GlobalPose()
	pose.P[0] += d.cfg.Commands.MoveStep
	return d.box.SetGlobalPose(pose)
}

// MoveBoxForce gives box1 the push velocity.
func (d *Demo) MoveBoxForce() error {
	if d.box == nil {
		return nil
	}
	return d.box.SetLinearVelocity(d.pushVelocity(), true)
}

// DelBox removes box1 from the scene and releases it. Later calls do
// nothing.
func (d *Demo) DelBox() error {
	if d.box == nil {
		return nil
	}
	if err := d.box.Release(); err != nil {
		return err
	}
	d.box = nil
	return nil
}

// MoveBox2 sets a kinematic target one step along +x from box2's pose.
func (d *Demo) MoveBox2() error {
	if d.box2 == nil {
		return nil
	}
	pose := d.box2.GlobalPose()
	pose.P[0] += d.cfg.Commands.MoveStep
	return d.box2.SetKinematicTarget(pose)
}

// MoveBoxForce2 gives box2 the push velocity.
func (d *Demo) MoveBoxForce2() error {
	if d.box2 == nil {
		return nil
	}
	return d.box2.SetLinearVelocity(d.pushVelocity(), true)
}

// ReconnectVisualizer drops the current connection and dials a fresh
// transport.
func (d *Demo) ReconnectVisualizer() {
	if d.visualizer == nil {
		return
	}
	d.visualizer.Disconnect()
	d.connectVisualizer()
	if d.visualizer.IsConnected() {
		log.Printf("snippet: visualizer reconnected")
	}
}
