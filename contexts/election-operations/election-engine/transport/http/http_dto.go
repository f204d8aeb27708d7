package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
}

type UpdateElectionRequest struct {
	Name        string     `json:"name,omitempty"`
	Category    string     `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Description *string    `json:"description,omitempty"`
	Active      *bool      `json:"active,omitempty"`
}

type ScheduleRequest struct {
	NominationStart *time.Time `json:"nomination_start,omitempty"`
	NominationEnd   *time.Time `json:"nomination_end,omitempty"`
	VotingStart     *time.Time `json:"voting_start,omitempty"`
	VotingEnd       *time.Time `json:"voting_end,omitempty"`
}

type ScheduleResponse struct {
	ScheduleID      string     `json:"schedule_id"`
	ElectionID      string     `json:"election_id"`
	NominationStart *time.Time `json:"nomination_start,omitempty"`
	NominationEnd   *time.Time `json:"nomination_end,omitempty"`
	VotingStart     *time.Time `json:"voting_start,omitempty"`
	VotingEnd       *time.Time `json:"voting_end,omitempty"`
	ResultsDeclared *time.Time `json:"results_declared,omitempty"`
}

type ElectionResponse struct {
	ElectionID        string            `json:"election_id"`
	Name              string            `json:"name"`
	Category          string            `json:"category,omitempty"`
	Date              time.Time         `json:"date"`
	Active            bool              `json:"active"`
	Description       string            `json:"description,omitempty"`
	Status            string            `json:"status"`
	WinnerDeclared    bool              `json:"winner_declared"`
	WinnerCandidateID string            `json:"winner_candidate_id,omitempty"`
	Schedule          *ScheduleResponse `json:"schedule,omitempty"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type ApplyCandidateRequest struct {
	Name      string `json:"name"`
	Party     string `json:"party,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Manifesto string `json:"manifesto,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type ApproveCandidateRequest struct {
	Position string `json:"position,omitempty"`
}

type RejectCandidateRequest struct {
	Reason string `json:"reason,omitempty"`
}

type CandidateResponse struct {
	CandidateID     string `json:"candidate_id"`
	ElectionID      string `json:"election_id"`
	Name            string `json:"name"`
	Party           string `json:"party,omitempty"`
	Symbol          string `json:"symbol,omitempty"`
	Manifesto       string `json:"manifesto,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type CandidateListResponse struct {
	Items []CandidateResponse `json:"items"`
}

type ContestResponse struct {
	ContestID   string `json:"contest_id"`
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	Position    string `json:"position,omitempty"`
}

type CastVoteRequest struct {
	ContestID string `json:"contest_id,omitempty"`
}

type VoteReceiptResponse struct {
	VoteID     string    `json:"vote_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

type TallyRowResponse struct {
	ContestID     string  `json:"contest_id"`
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	Position      string  `json:"position,omitempty"`
	Votes         int     `json:"votes"`
	Percentage    float64 `json:"percentage"`
}

type TallyResponse struct {
	ElectionID string             `json:"election_id"`
	TotalVotes int                `json:"total_votes"`
	Tied       bool               `json:"tied"`
	ComputedAt time.Time          `json:"computed_at"`
	Rows       []TallyRowResponse `json:"rows"`
}

type WinnerResponse struct {
	ElectionID    string `json:"election_id"`
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	Votes         int    `json:"votes"`
}

type ResultRowResponse struct {
	ElectionID  string    `json:"election_id"`
	ContestID   string    `json:"contest_id"`
	CandidateID string    `json:"candidate_id"`
	TotalVotes  int       `json:"total_votes"`
	Percentage  float64   `json:"percentage"`
	ComputedAt  time.Time `json:"computed_at"`
}

type ResultListResponse struct {
	Items []ResultRowResponse `json:"items"`
}

type StatusResponse struct {
	ElectionID string `json:"election_id"`
	Status     string `json:"status"`
}
