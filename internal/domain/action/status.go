package action

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a status change is not allowed from
// the item's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// advanceTo is the single-step cycle driven by the "advance" control.
var advanceTo = map[Status]Status{
	StatusPending:    StatusInProgress,
	StatusInProgress: StatusCompleted,
	StatusCompleted:  StatusPending,
	StatusOffTrack:   StatusInProgress,
}

// NextStatus returns the status Advance moves to from s.
func NextStatus(s Status) (Status, error) {
	next, ok := advanceTo[s]
	if !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
	}
	return next, nil
}

// Advance moves the item one step around the status cycle.
func (i *Item) Advance(now time.Time) error {
	next, err := NextStatus(i.Status)
	if err != nil {
		return err
	}
	i.setStatus(next, now)
	return nil
}

// MarkOffTrack flags an open item as off track.
func (i *Item) MarkOffTrack(now time.Time) error {
	if i.Status != StatusPending && i.Status != StatusInProgress {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, i.Status, StatusOffTrack)
	}
	i.setStatus(StatusOffTrack, now)
	return nil
}

// setStatus keeps CompletedAt in step with the completed state.
func (i *Item) setStatus(s Status, now time.Time) {
	if s == StatusCompleted {
		t := now
		i.CompletedAt = &t
	} else {
		i.CompletedAt = nil
	}
	i.Status = s
	i.UpdatedAt = now
}
