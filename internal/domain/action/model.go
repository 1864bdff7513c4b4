package action

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Timeline is the horizon an action item belongs to.
type Timeline string

const (
	ShortTerm  Timeline = "short_term"
	MediumTerm Timeline = "medium_term"
	LongTerm   Timeline = "long_term"
)

// Status is the lifecycle state of an action item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOffTrack   Status = "off_track"
)

// Priority orders items within a timeline.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var timelineRank = map[Timeline]int{ShortTerm: 0, MediumTerm: 1, LongTerm: 2}

var priorityRank = map[Priority]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusOffTrack:   true,
}

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusOffTrack}

// PriorityFor maps a generated item's timeline to its priority.
func PriorityFor(t Timeline) Priority {
	switch t {
	case ShortTerm:
		return PriorityHigh
	case MediumTerm:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Item maps to the action_items table.
type Item struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	CountryCode string     `db:"country_code" json:"country_code"`
	Timeline    Timeline   `db:"timeline" json:"timeline"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      Status     `db:"status" json:"status"`
	Priority    Priority   `db:"priority" json:"priority"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy.
func (i *Item) Clone() *Item {
	out := *i
	if i.Description != nil {
		d := *i.Description
		out.Description = &d
	}
	if i.Notes != nil {
		n := *i.Notes
		out.Notes = &n
	}
	if i.CompletedAt != nil {
		t := *i.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// Less orders items by timeline, then priority, then creation time.
func Less(a, b *Item) bool {
	if ta, tb := timelineRank[a.Timeline], timelineRank[b.Timeline]; ta != tb {
		return ta < tb
	}
	if pa, pb := priorityRank[a.Priority], priorityRank[b.Priority]; pa != pb {
		return pa < pb
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortItems sorts in place by Less.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool { return Less(items[i], items[j]) })
}

// CountByStatus tallies items per status. Every status is present.
func CountByStatus(items []*Item) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, it := range items {
		counts[it.Status]++
	}
	return counts
}
