package snippet

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/hellosnippet/physics"
)

// CreateDynamic spawns a named "ball_N" body with one exclusive shape in the
// dynamic-test filter group. The scene owns the result.
func (d *Demo) CreateDynamic(pose physics.Pose, g physics.Geometry, velocity mgl64.Vec2) (*physics.RigidBody, error) {
	if d.scene == nil {
		return nil, ErrNotInitialized
	}
	body, err := d.physics.CreateRigidDynamic(pose)
	if err != nil {
		return nil, fmt.Errorf("snippet: create dynamic: %w", err)
	}
	shape, err := physics.CreateExclusiveShape(body, g, d.material)
	if err != nil {
		body.Release()
		return nil, fmt.Errorf("snippet: create dynamic: %w", err)
	}
	shape.SetSimulationFilterData(physics.FilterData{Word0: FilterDynamicTest})

	ball := d.cfg.Ball
	if err := body.UpdateMassAndInertia(ball.Mass); err != nil {
		body.Release()
		return nil, fmt.Errorf("snippet: create dynamic: %w", err)
	}
	body.SetName(fmt.Sprintf("ball_%d", d.ballIndex))
	body.UserData = Tag{Role: "ball"}
	body.SetAngularDamping(ball.AngularDamping)
	if err := body.SetLinearVelocity(velocity, true); err != nil {
		body.Release()
		return nil, fmt.Errorf("snippet: create dynamic: %w", err)
	}
	if err := d.scene.AddActor(body); err != nil {
		body.Release()
		return nil, fmt.Errorf("snippet: add %s: %w", body.Name(), err)
	}
	d.ballIndex++
	return body, nil
}

// CreateStack builds a pyramid of size*(size+1)/2 boxes sharing one shape in
// the structural filter group. Row i holds size-i boxes.
func (d *Demo) CreateStack(base physics.Pose, size int, halfExtent float64) ([]*physics.RigidBody, error) {
	if d.scene == nil {
		return nil, ErrNotInitialized
	}
	if size <= 0 {
		return nil, nil
	}
	shape, err := d.physics.CreateShape(physics.BoxGeometry{HalfX: halfExtent, HalfY: halfExtent}, d.material)
	if err != nil {
		return nil, fmt.Errorf("snippet: create stack: %w", err)
	}
	defer shape.Release()
	shape.SetSimulationFilterData(physics.FilterData{Word0: FilterStructural})

	bodies := make([]*physics.RigidBody, 0, size*(size+1)/2)
	for i := 0; i < size; i++ {
		for j := 0; j < size-i; j++ {
			local := mgl64.Vec2{float64(2*j-(size-i)) * halfExtent, float64(2*i+1) * halfExtent}
			body, err := d.physics.CreateRigidDynamic(base.Transform(physics.Pose{P: local}))
			if err != nil {
				return bodies, fmt.Errorf("snippet: create stack: %w", err)
			}
			body.SetName(fmt.Sprintf("box_%d_%d", i, j))
			body.UserData = Tag{Role: "stack"}
			if err := body.AttachShape(shape); err != nil {
				body.Release()
				return bodies, fmt.Errorf("snippet: create stack: %w", err)
			}
			if err := body.UpdateMassAndInertia(d.cfg.Stack.Mass); err != nil {
				body.Release()
				return bodies, fmt.Errorf("snippet: create stack: %w", err)
			}
			if err := d.scene.AddActor(body); err != nil {
				body.Release()
				return bodies, fmt.Errorf("snippet: add %s: %w", body.Name(), err)
			}
			bodies = append(bodies, body)
		}
	}
	return bodies, nil
}

// spawnStack places a configured stack one spacing further along -x than the
// previous one.
func (d *Demo) spawnStack() ([]*physics.RigidBody, error) {
	st := d.cfg.Stack
	d.stackOffset -= st.Spacing
	return d.CreateStack(physics.NewPose(d.stackOffset, 0), st.Size, st.HalfExtent)
}

func (d *Demo) createTrigger() error {
	tc := d.cfg.Trigger
	body, err := d.physics.CreateRigidStatic(physics.NewPose(tc.X, tc.Y))
	if err != nil {
		return fmt.Errorf("snippet: create trigger: %w", err)
	}
	body.SetName("trigger")
	body.UserData = Tag{Role: "trigger"}
	shape, err := physics.CreateExclusiveShape(body, physics.BoxGeometry{HalfX: tc.HalfX, HalfY: tc.HalfY}, d.material)
	if err == nil {
		err = shape.SetFlag(physics.ShapeSimulation, false)
	}
	if err == nil {
		err = shape.SetFlag(physics.ShapeTrigger, true)
	}
	if err == nil {
		err = d.scene.AddActor(body)
	}
	if err != nil {
		body.Release()
		return fmt.Errorf("snippet: create trigger: %w", err)
	}
	d.trigger = body
	return nil
}

// newKinematicBox creates a kinematic structural box and adds it to the
// scene.
func (d *Demo) newKinematicBox(name string, x, y, halfExtent float64) (*physics.RigidBody, error) {
	body, err := d.physics.CreateRigidDynamic(physics.NewPose(x, y))
	if err != nil {
		return nil, err
	}
	shape, err := physics.CreateExclusiveShape(body, physics.BoxGeometry{HalfX: halfExtent, HalfY: halfExtent}, d.material)
	if err != nil {
		body.Release()
		return nil, err
	}
	shape.SetSimulationFilterData(physics.FilterData{Word0: FilterStructural})
	if err := body.UpdateMassAndInertia(1); err != nil {
		body.Release()
		return nil, err
	}
	body.SetName(name)
	body.UserData = Tag{Role: name}
	if err := body.SetKinematic(true); err != nil {
		body.Release()
		return nil, err
	}
	if err := d.scene.AddActor(body); err != nil {
		body.Release()
		return nil, err
	}
	return body, nil
}

func (d *Demo) createBox() error {
	bc := d.cfg.Box
	body, err := d.newKinematicBox(bc.Name, bc.X, bc.Y, bc.HalfExtent)
	if err != nil {
		return fmt.Errorf("snippet: create %s: %w", bc.Name, err)
	}
	d.box = body
	return nil
}

// CreateBox2 replaces box2, releasing the previous instance first.
func (d *Demo) CreateBox2() (*physics.RigidBody, error) {
	if d.scene == nil {
		return nil, ErrNotInitialized
	}
	if d.box2 != nil {
		if err := d.box2.Release(); err != nil {
			return nil, fmt.Errorf("snippet: replace box2: %w", err)
		}
		d.box2 = nil
	}
	bc := d.cfg.Box2
	body, err := d.newKinematicBox(bc.Name, bc.X, bc.Y, bc.HalfExtent)
	if err != nil {
		return nil, fmt.Errorf("snippet: create %s: %w", bc.Name, err)
	}
	d.box2 = body
	return body, nil
}
