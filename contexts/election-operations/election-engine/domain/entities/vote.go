package entities

import "time"

// Vote carries a denormalized ElectionID so the one-ballot-per-election
// rule can be enforced by a single storage uniqueness constraint on
// (election_id, voter_id).
type Vote struct {
	VoteID        string
	ContestID     string
	ElectionID    string
	VoterID       string
	SourceAddress string
	CastAt        time.Time
}

type VoteReceipt struct {
	VoteID     string
	RecordedAt time.Time
}

// TallyRow is one candidate line of a computed tally, ordered by vote count
// descending with candidate id as the stable secondary key.
type TallyRow struct {
	ContestID     string
	CandidateID   string
	CandidateName string
	Position      string
	Votes         int
	Percentage    float64
}

// ElectionTally is the full ordered tally for one election. Tied reports
// whether the leading count is shared by two or more candidates, in which
// case automatic winner resolution must be refused.
type ElectionTally struct {
	ElectionID string
	TotalVotes int
	Rows       []TallyRow
	Tied       bool
	ComputedAt time.Time
}

// Leader returns the top row. Callers must check Tied before treating the
// leader as a winner.
func (t ElectionTally) Leader() (TallyRow, bool) {
	if len(t.Rows) == 0 {
		return TallyRow{}, false
	}
	return t.Rows[0], true
}
