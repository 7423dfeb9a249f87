package physics

import "github.com/go-gl/mathgl/mgl64"

// ContactPairHeaderFlags annotate a reported actor pair.
type ContactPairHeaderFlags uint32

const (
	RemovedActor0 ContactPairHeaderFlags = 1 << iota
	RemovedActor1
)

// ContactPairHeader identifies the actors of a contact report.
type ContactPairHeader struct {
	Actors [2]*RigidBody
	Flags  ContactPairHeaderFlags
}

// ContactPair is one reported shape pair.
type ContactPair struct {
	Shapes [2]*Shape
	Events PairFlags
	Normal mgl64.Vec2
}

// TriggerPair is one reported trigger transition.
type TriggerPair struct {
	TriggerShape *Shape
	TriggerActor *RigidBody
	OtherShape   *Shape
	OtherActor   *RigidBody
	Status       PairFlags
	// Removed is set when the pair was lost because an actor left the scene.
	Removed bool
}

// ConstraintInfo describes a broken constraint.
type ConstraintInfo struct {
	Actors [2]*RigidBody
}

// SimulationEventCallback receives notifications from FetchResults on the
// caller's goroutine. Scene writes from inside a callback fail with
// ErrSceneLocked.
type SimulationEventCallback interface {
	OnContact(header ContactPairHeader, pairs []ContactPair)
	OnTrigger(pairs []TriggerPair)
	OnConstraintBreak(constraints []ConstraintInfo)
	OnWake(actors []*RigidBody)
	OnSleep(actors []*RigidBody)
	OnAdvance(bodies []*RigidBody, poses []Pose)
}

// NopEventCallback ignores every event. Embed it and override the methods
// that matter.
type NopEventCallback struct{}

func (NopEventCallback) OnContact(ContactPairHeader, []ContactPair) {}
func (NopEventCallback) OnTrigger([]TriggerPair)                    {}
func (NopEventCallback) OnConstraintBreak([]ConstraintInfo)         {}
func (NopEventCallback) OnWake([]*RigidBody)                        {}
func (NopEventCallback) OnSleep([]*RigidBody)                       {}
func (NopEventCallback) OnAdvance([]*RigidBody, []Pose)             {}

type simEvent struct {
	header  ContactPairHeader
	pair    ContactPair
	trigger *TriggerPair
}
