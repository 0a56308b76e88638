package ecs

import (
	"github.com/phanxgames/flipbook"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ProgressEvent is published once per completed frame load.
type ProgressEvent struct {
	Loaded  int
	Total   int
	Done    bool
	Percent int
}

// PhaseEvent is published when a mount changes playback phase.
type PhaseEvent struct {
	Phase flipbook.Phase
}

// ProgressEventType is the Donburi event type for load progress.
var ProgressEventType = events.NewEventType[ProgressEvent]()

// PhaseEventType is the Donburi event type for phase changes.
var PhaseEventType = events.NewEventType[PhaseEvent]()

type donburiObserver struct {
	world donburi.World
}

// NewDonburiObserver creates an Observer backed by a Donburi world. Events are
// queued and delivered by ProcessEvents on the event types.
func NewDonburiObserver(world donburi.World) flipbook.Observer {
	return &donburiObserver{world: world}
}

func (o *donburiObserver) OnProgress(st flipbook.LoadState) {
	ProgressEventType.Publish(o.world, ProgressEvent{
		Loaded:  st.Loaded,
		Total:   st.Total,
		Done:    st.Done(),
		Percent: st.Percent(),
	})
}

func (o *donburiObserver) OnPhase(p flipbook.Phase) {
	PhaseEventType.Publish(o.world, PhaseEvent{Phase: p})
}
