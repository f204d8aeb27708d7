package entities

import "time"

type ElectionStatus string

const (
	StatusUpcoming ElectionStatus = "upcoming"
	StatusOngoing  ElectionStatus = "ongoing"
	StatusEnded    ElectionStatus = "ended"
)

type Election struct {
	ElectionID  string
	Name        string
	Category    string
	Date        time.Time
	Active      bool
	Description string
	AdminID     string

	WinnerDeclared    bool
	WinnerCandidateID string
	WinnerDeclaredAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schedule is an optional 1:1 attachment to an Election. A missing Schedule
// is a valid state; status resolution then falls back to Election.Date.
type Schedule struct {
	ScheduleID      string
	ElectionID      string
	NominationStart *time.Time
	NominationEnd   *time.Time
	VotingStart     *time.Time
	VotingEnd       *time.Time
	ResultsDeclared *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasVotingWindow reports whether both voting timestamps are present.
// A partial window does not override the Election.Date fallback.
func (s Schedule) HasVotingWindow() bool {
	return s.VotingStart != nil && s.VotingEnd != nil
}

// Result is a cached tally snapshot. The votes table stays the source of
// truth; snapshots can be deleted and regenerated at any time.
type Result struct {
	ElectionID  string
	CandidateID string
	ContestID   string
	TotalVotes  int
	Percentage  float64
	ComputedAt  time.Time
}
