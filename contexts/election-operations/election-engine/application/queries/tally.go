package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

// TallyUseCase aggregates recorded votes per contest into totals and
// percentages. It reads contest rows, never Candidate.Status, so votes for
// rejected or reverted candidates drop out automatically once their contest
// row is gone. Reads are side-effect free on the votes table and idempotent.
type TallyUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Clock      ports.Clock
}

// Tally computes the ordered tally for one election. Rows are sorted by vote
// count descending with candidate id as the stable secondary key; order among
// tied candidates is not meaningful. Tied is set when the leading count is
// shared by two or more candidates.
func (uc TallyUseCase) Tally(ctx context.Context, electionID string) (entities.ElectionTally, error) {
	electionID = strings.TrimSpace(electionID)
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return entities.ElectionTally{}, err
	}

	contests, err := uc.Candidates.ListContestsByElection(ctx, electionID)
	if err != nil {
		return entities.ElectionTally{}, err
	}

	names := make(map[string]string)
	if candidates, err := uc.Candidates.ListCandidatesByElection(ctx, electionID); err != nil {
		return entities.ElectionTally{}, err
	} else {
		for _, candidate := range candidates {
			names[candidate.CandidateID] = candidate.Name
		}
	}

	rows := make([]entities.TallyRow, 0, len(contests))
	total := 0
	for _, contest := range contests {
		count, err := uc.Votes.CountVotesByContest(ctx, contest.ContestID)
		if err != nil {
			return entities.ElectionTally{}, err
		}
		total += count
		rows = append(rows, entities.TallyRow{
			ContestID:     contest.ContestID,
			CandidateID:   contest.CandidateID,
			CandidateName: names[contest.CandidateID],
			Position:      contest.Position,
			Votes:         count,
		})
	}

	for i := range rows {
		if total > 0 {
			rows[i].Percentage = 100 * float64(rows[i].Votes) / float64(total)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Votes == rows[j].Votes {
			return rows[i].CandidateID < rows[j].CandidateID
		}
		return rows[i].Votes > rows[j].Votes
	})

	tied := len(rows) > 1 && rows[0].Votes == rows[1].Votes

	return entities.ElectionTally{
		ElectionID: electionID,
		TotalVotes: total,
		Rows:       rows,
		Tied:       tied,
		ComputedAt: uc.now(),
	}, nil
}

func (uc TallyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
