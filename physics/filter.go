package physics

// FilterData is the user-assigned simulation filter tag of a shape.
type FilterData struct {
	Word0, Word1, Word2, Word3 uint32
}

// FilterObjectAttributes describe one side of a candidate pair.
type FilterObjectAttributes uint32

const (
	FilterObjectRigidStatic FilterObjectAttributes = 1 << iota
	FilterObjectRigidDynamic
	FilterObjectKinematic
	FilterObjectTrigger
)

func (a FilterObjectAttributes) IsTrigger() bool   { return a&FilterObjectTrigger != 0 }
func (a FilterObjectAttributes) IsKinematic() bool { return a&FilterObjectKinematic != 0 }
func (a FilterObjectAttributes) IsStatic() bool    { return a&FilterObjectRigidStatic != 0 }

// FilterFlags decide whether a candidate pair is kept.
type FilterFlags uint32

const (
	FilterDefault  FilterFlags = 0
	FilterKill     FilterFlags = 1 << 0
	FilterSuppress FilterFlags = 1 << 1
)

// PairFlags select the behaviours enabled for a kept pair, and double as the
// event bits of a reported pair.
type PairFlags uint32

const (
	SolveContact PairFlags = 1 << iota
	DetectDiscreteContact
	NotifyTouchFound
	NotifyTouchLost

	ContactDefault = SolveContact | DetectDiscreteContact
	TriggerDefault = NotifyTouchFound | NotifyTouchLost | DetectDiscreteContact
)

// FilterShader is called for every candidate pair before contact generation.
// It runs on dispatcher goroutines and must not have side effects.
type FilterShader func(attr0 FilterObjectAttributes, data0 FilterData, attr1 FilterObjectAttributes, data1 FilterData) (FilterFlags, PairFlags)

// DefaultFilterShader solves every contact and reports trigger transitions.
func DefaultFilterShader(attr0 FilterObjectAttributes, data0 FilterData, attr1 FilterObjectAttributes, data1 FilterData) (FilterFlags, PairFlags) {
	if attr0.IsTrigger() || attr1.IsTrigger() {
		return FilterDefault, TriggerDefault
	}
	return FilterDefault, ContactDefault
}
