package physics

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// Version is the facade version a caller must request from NewFoundation.
const Version uint32 = 0x05010300

// Kind identifies a class of engine object tracked by the foundation.
type Kind int

const (
	KindFoundation Kind = iota
	KindPhysics
	KindDispatcher
	KindScene
	KindMaterial
	KindShape
	KindBody
	KindTransport
	KindVisualizer
	kindCount
)

var kindNames = [kindCount]string{
	KindFoundation: "foundation",
	KindPhysics:    "physics",
	KindDispatcher: "dispatcher",
	KindScene:      "scene",
	KindMaterial:   "material",
	KindShape:      "shape",
	KindBody:       "body",
	KindTransport:  "transport",
	KindVisualizer: "visualizer",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Stats is a snapshot of live handle counts.
type Stats map[Kind]int64

// Live returns the total number of live handles across all kinds.
func (s Stats) Live() int64 {
	var n int64
	for _, v := range s {
		n += v
	}
	return n
}

// Foundation is the root engine context. Every other engine object is
// created under it and reports its lifetime to the foundation's counters.
type Foundation struct {
	counts   [kindCount]atomic.Int64
	once     sync.Once
	released atomic.Bool
}

// NewFoundation creates the root context. The requested version must match
// Version.
func NewFoundation(version uint32) (*Foundation, error) {
	if version != Version {
		return nil, fmt.Errorf("%w: requested %#x, have %#x", ErrVersionMismatch, version, Version)
	}
	f := &Foundation{}
	f.Track(KindFoundation)
	return f, nil
}

// Track records the creation of one handle of the given kind.
func (f *Foundation) Track(k Kind) {
	if f == nil || k < 0 || k >= kindCount {
		return
	}
	f.counts[k].Add(1)
}

// Untrack records the release of one handle of the given kind.
func (f *Foundation) Untrack(k Kind) {
	if f == nil || k < 0 || k >= kindCount {
		return
	}
	if f.counts[k].Add(-1) < 0 {
		log.Printf("physics: %s count went negative", k)
	}
}

// Stats returns the live handle counts.
func (f *Foundation) Stats() Stats {
	out := make(Stats, kindCount)
	if f == nil {
		return out
	}
	for k := Kind(0); k < kindCount; k++ {
		out[k] = f.counts[k].Load()
	}
	return out
}

// Count returns the live handle count for one kind.
func (f *Foundation) Count(k Kind) int64 {
	if f == nil || k < 0 || k >= kindCount {
		return 0
	}
	return f.counts[k].Load()
}

// Released reports whether Release has been called.
func (f *Foundation) Released() bool {
	return f == nil || f.released.Load()
}

// Release tears down the foundation. It fails with ErrDependentsAlive when any
// other handle is still live, leaving the foundation usable.
func (f *Foundation) Release() error {
	if f == nil {
		return nil
	}
	if f.released.Load() {
		return ErrReleased
	}
	for k := KindFoundation + 1; k < kindCount; k++ {
		if n := f.counts[k].Load(); n != 0 {
			return fmt.Errorf("%w: %d %s handle(s)", ErrDependentsAlive, n, k)
		}
	}
	f.once.Do(func() {
		f.released.Store(true)
		f.Untrack(KindFoundation)
	})
	return nil
}

func kindByName(name string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return 0, false
}

// TrackHandle records a handle created outside this package, by kind name.
func (f *Foundation) TrackHandle(name string) {
	if k, ok := kindByName(name); ok {
		f.Track(k)
	}
}

// UntrackHandle is the release counterpart of TrackHandle.
func (f *Foundation) UntrackHandle(name string) {
	if k, ok := kindByName(name); ok {
		f.Untrack(k)
	}
}
