package pvd

// InstrumentationFlags selects which data a connected visualizer receives.
type InstrumentationFlags uint8

const (
	InstrumentDebug InstrumentationFlags = 1 << iota
	InstrumentProfile
	InstrumentMemory

	InstrumentAll = InstrumentDebug | InstrumentProfile | InstrumentMemory
)

// SceneFlags selects which per-scene data is mirrored.
type SceneFlags uint8

const (
	TransmitContacts SceneFlags = 1 << iota
	TransmitConstraints
	TransmitSceneQueries
)

// Message types on the wire.
const (
	MessageConnect = "connect"
	MessageFrame   = "frame"
	MessageClose   = "close"
)

// Message is the envelope for everything written to the transport.
type Message struct {
	Type            string               `json:"type"`
	Instrumentation InstrumentationFlags `json:"instrumentation,omitempty"`
	Frame           *Frame               `json:"frame,omitempty"`
}

// Frame is one mirrored simulation step.
type Frame struct {
	Scene    string         `json:"scene"`
	Index    uint64         `json:"index"`
	Time     float64        `json:"time"`
	Gravity  [2]float64     `json:"gravity"`
	Bodies   []BodyState    `json:"bodies"`
	Contacts []ContactState `json:"contacts,omitempty"`
	Flags    SceneFlags     `json:"flags"`
}

// BodyState is the mirrored state of one actor.
type BodyState struct {
	Name    string  `json:"name,omitempty"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Shapes  int     `json:"shapes"`
	Trigger bool    `json:"trigger,omitempty"`
}

// ContactState names the two actors of a reported contact.
type ContactState struct {
	A string `json:"a"`
	B string `json:"b"`
}
