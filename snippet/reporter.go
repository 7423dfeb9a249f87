package snippet

import (
	"fmt"
	"io"

	"github.com/milk9111/hellosnippet/physics"
)

// ContactReportFilterShader keeps every pair, detects contacts and reports
// touch-found. Trigger pairs also report touch-lost so exits are seen.
func ContactReportFilterShader(attr0 physics.FilterObjectAttributes, _ physics.FilterData, attr1 physics.FilterObjectAttributes, _ physics.FilterData) (physics.FilterFlags, physics.PairFlags) {
	flags := physics.DetectDiscreteContact | physics.NotifyTouchFound
	if attr0.IsTrigger() || attr1.IsTrigger() {
		flags |= physics.NotifyTouchLost
	}
	return physics.FilterDefault, flags
}

// solvingFilterShader is ContactReportFilterShader with contact response.
func solvingFilterShader(attr0 physics.FilterObjectAttributes, d0 physics.FilterData, attr1 physics.FilterObjectAttributes, d1 physics.FilterData) (physics.FilterFlags, physics.PairFlags) {
	ff, pf := ContactReportFilterShader(attr0, d0, attr1, d1)
	return ff, pf | physics.SolveContact
}

// contactReporter prints contact starts between named actors and trigger
// transitions between tagged actors. Pairs lost because an actor left the
// scene are not reported.
type contactReporter struct {
	physics.NopEventCallback
	out io.Writer
}

func (r *contactReporter) OnContact(header physics.ContactPairHeader, pairs []physics.ContactPair) {
	if header.Flags&(physics.RemovedActor0|physics.RemovedActor1) != 0 {
		return
	}
	a, b := header.Actors[0], header.Actors[1]
	if a == nil || b == nil {
		return
	}
	if a.Type() == physics.BodyStatic || b.Type() == physics.BodyStatic {
		return
	}
	nameA, nameB := a.Name(), b.Name()
	if nameA == "" || nameB == "" {
		return
	}
	for _, p := range pairs {
		if p.Events&physics.NotifyTouchFound != 0 {
			fmt.Fprintf(r.out, "touch began: %s and %s\n", nameA, nameB)
		}
	}
}

func (r *contactReporter) OnTrigger(pairs []physics.TriggerPair) {
	for _, p := range pairs {
		if p.TriggerActor == nil || p.OtherActor == nil || p.Removed {
			continue
		}
		if p.TriggerActor.UserData == nil || p.OtherActor.UserData == nil {
			continue
		}
		switch {
		case p.Status&physics.NotifyTouchFound != 0:
			fmt.Fprintf(r.out, "shape is entering trigger volume: %s\n", p.OtherActor.Name())
		case p.Status&physics.NotifyTouchLost != 0:
			fmt.Fprintf(r.out, "shape is leaving trigger volume: %s\n", p.OtherActor.Name())
		}
	}
}
