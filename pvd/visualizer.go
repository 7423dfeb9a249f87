package pvd

import (
	"log"
	"sync"
	"sync/atomic"
)

// Visualizer mirrors simulation frames to a connected receiver. At most one
// transport is attached at a time.
type Visualizer struct {
	tracker Tracker

	mu        sync.Mutex
	transport *Transport
	flags     InstrumentationFlags
	released  bool

	sent atomic.Uint64
}

// NewVisualizer creates a disconnected visualizer. tracker may be nil.
func NewVisualizer(tracker Tracker) *Visualizer {
	if tracker != nil {
		tracker.TrackHandle(HandleVisualizer)
	}
	return &Visualizer{tracker: tracker}
}

// Connect attaches t and dials it. It returns false when already connected
// or when the receiver cannot be reached; the caller keeps its own reference
// to t either way.
func (v *Visualizer) Connect(t *Transport, flags InstrumentationFlags) bool {
	if v == nil || t == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return false
	}
	if v.transport != nil && v.transport.IsConnected() {
		return false
	}
	if err := t.Connect(); err != nil {
		log.Printf("pvd: connect failed: %v", err)
		return false
	}
	if v.transport != nil {
		v.transport.Release()
	}
	t.retain()
	v.transport = t
	v.flags = flags
	if err := t.WriteJSON(Message{Type: MessageConnect, Instrumentation: flags}); err != nil {
		log.Printf("pvd: handshake failed: %v", err)
	}
	return true
}

// IsConnected reports whether frames are currently being mirrored.
func (v *Visualizer) IsConnected() bool {
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transport != nil && v.transport.IsConnected()
}

// Transport returns the attached transport, if any.
func (v *Visualizer) Transport() *Transport {
	if v == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transport
}

// Instrumentation returns the flags passed to the last successful Connect.
func (v *Visualizer) Instrumentation() InstrumentationFlags {
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.flags
}

// Disconnect closes the connection and drops the visualizer's reference to
// its transport.
func (v *Visualizer) Disconnect() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disconnectLocked()
}

func (v *Visualizer) disconnectLocked() {
	if v.transport == nil {
		return
	}
	if v.transport.IsConnected() {
		_ = v.transport.WriteJSON(Message{Type: MessageClose})
	}
	v.transport.Disconnect()
	v.transport.Release()
	v.transport = nil
	v.flags = 0
}

// Send mirrors one frame. It is a no-op while disconnected.
func (v *Visualizer) Send(frame Frame) error {
	if v == nil {
		return nil
	}
	v.mu.Lock()
	t := v.transport
	v.mu.Unlock()
	if t == nil || !t.IsConnected() {
		return nil
	}
	if err := t.WriteJSON(Message{Type: MessageFrame, Frame: &frame}); err != nil {
		return err
	}
	v.sent.Add(1)
	return nil
}

// FramesSent returns how many frames have been written.
func (v *Visualizer) FramesSent() uint64 {
	if v == nil {
		return 0
	}
	return v.sent.Load()
}

// Release disconnects and tears the visualizer down.
func (v *Visualizer) Release() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return
	}
	v.disconnectLocked()
	v.released = true
	if v.tracker != nil {
		v.tracker.UntrackHandle(HandleVisualizer)
	}
}
