package models

import "time"

// WorkItem is one unit of completed support work. CompletedBy is set only
// when the resolving agent differs from the original assignee.
type WorkItem struct {
	ID          int64
	AgentID     string
	CompletedBy string
	Category    string
	Disposition string
	StartedAt   *time.Time
	CompletedAt time.Time
}

// ExternalCompletion is a batch, date-only completion count reported from the
// secondary tracking board. Date carries no time component.
type ExternalCompletion struct {
	AgentID string
	Date    time.Time
	Count   int
}

// Agent is one roster entry. RestrictedOnly marks agents whose category
// assignment is limited to the restricted queue; they compete on a separate
// leaderboard and are excluded from category-agnostic rankings.
type Agent struct {
	ID             string
	Name           string
	RestrictedOnly bool
}
