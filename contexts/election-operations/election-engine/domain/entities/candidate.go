package entities

import "time"

type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
)

type Candidate struct {
	CandidateID     string
	ElectionID      string
	VoterID         string
	Name            string
	Party           string
	Symbol          string
	Manifesto       string
	PhotoURL        string
	Status          CandidateStatus
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Contest binds an approved Candidate to an Election. Presence of a Contest
// row is the authoritative eligibility signal; tallies never read
// Candidate.Status.
type Contest struct {
	ContestID   string
	ElectionID  string
	CandidateID string
	Position    string
	CreatedAt   time.Time
}
