package domain

import "time"

type Phase string

const (
	PhasePlaced     Phase = "placed"
	PhaseProcessing Phase = "processing"
	PhaseReady      Phase = "ready"
	PhaseDelivered  Phase = "delivered"
)

const (
	processingAfter = 5 * time.Minute
	readyAfter      = 10 * time.Minute
	deliveredAfter  = 15 * time.Minute
)

// PhaseAt projects the tracking phase from the time elapsed since createdAt.
// It never writes state; persisted delivery is handled by the worker.
func PhaseAt(now, createdAt time.Time) Phase {
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed < processingAfter:
		return PhasePlaced
	case elapsed < readyAfter:
		return PhaseProcessing
	case elapsed < deliveredAfter:
		return PhaseReady
	default:
		return PhaseDelivered
	}
}

func (p Phase) Progress() int {
	switch p {
	case PhasePlaced:
		return 25
	case PhaseProcessing:
		return 50
	case PhaseReady:
		return 75
	case PhaseDelivered:
		return 100
	}
	return 0
}
