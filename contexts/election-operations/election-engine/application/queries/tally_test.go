package queries

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"ballotbox/contexts/election-operations/election-engine/adapters/memory"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func seedRace(t *testing.T, store *memory.Store, counts map[string]int) {
	t.Helper()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.SetElection(entities.Election{
		ElectionID: "election-1",
		Name:       "Board Election",
		Date:       base,
		Active:     true,
		AdminID:    "admin-1",
		CreatedAt:  base.Add(-time.Hour),
	})

	voter := 0
	for candidateID, votes := range counts {
		store.SetCandidate(entities.Candidate{
			CandidateID: candidateID,
			ElectionID:  "election-1",
			Name:        "Candidate " + candidateID,
			Status:      entities.CandidateStatusApproved,
		})
		store.SetContest(entities.Contest{
			ContestID:   "contest-" + candidateID,
			ElectionID:  "election-1",
			CandidateID: candidateID,
			CreatedAt:   base,
		})
		for i := 0; i < votes; i++ {
			voter++
			if err := store.InsertVote(context.Background(), entities.Vote{
				VoteID:     fmt.Sprintf("vote-%s-%d", candidateID, i),
				ContestID:  "contest-" + candidateID,
				ElectionID: "election-1",
				VoterID:    fmt.Sprintf("voter-%d", voter),
				CastAt:     base.Add(time.Duration(voter) * time.Minute),
			}); err != nil {
				t.Fatalf("seed vote failed: %v", err)
			}
		}
	}
}

func TestTallyOrderingAndPercentages(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, map[string]int{"cand-a": 3, "cand-b": 2, "cand-c": 0})

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
		Clock:      fixedClock{now: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
	}
	tally, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}

	if tally.TotalVotes != 5 {
		t.Fatalf("expected 5 total votes, got %d", tally.TotalVotes)
	}
	if len(tally.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tally.Rows))
	}
	if tally.Rows[0].CandidateID != "cand-a" || tally.Rows[1].CandidateID != "cand-b" || tally.Rows[2].CandidateID != "cand-c" {
		t.Fatalf("rows out of order: %+v", tally.Rows)
	}
	if tally.Tied {
		t.Fatalf("no tie expected")
	}

	sum := 0
	percent := 0.0
	for _, row := range tally.Rows {
		sum += row.Votes
		percent += row.Percentage
	}
	if sum != tally.TotalVotes {
		t.Fatalf("row votes %d must sum to total %d", sum, tally.TotalVotes)
	}
	if math.Abs(percent-100) > 1e-9 {
		t.Fatalf("percentages must sum to 100, got %f", percent)
	}
	if math.Abs(tally.Rows[0].Percentage-60) > 1e-9 {
		t.Fatalf("leader percentage expected 60, got %f", tally.Rows[0].Percentage)
	}
}

func TestTallyIdempotent(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, map[string]int{"cand-a": 2, "cand-b": 1})

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
		Clock:      fixedClock{now: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
	}
	first, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("first tally failed: %v", err)
	}
	second, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("second tally failed: %v", err)
	}
	if first.TotalVotes != second.TotalVotes || len(first.Rows) != len(second.Rows) {
		t.Fatalf("tally must be stable: %+v vs %+v", first, second)
	}
	for i := range first.Rows {
		if first.Rows[i] != second.Rows[i] {
			t.Fatalf("row %d drifted: %+v vs %+v", i, first.Rows[i], second.Rows[i])
		}
	}
}

func TestTallyExcludesOrphanedVotes(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, map[string]int{"cand-a": 2, "cand-b": 2})

	// Simulate a revert: the contest row disappears, the votes stay.
	if err := store.DeleteContest(context.Background(), "contest-cand-b"); err != nil {
		t.Fatalf("delete contest failed: %v", err)
	}

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
	}
	tally, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.TotalVotes != 2 || len(tally.Rows) != 1 {
		t.Fatalf("orphaned votes must not count: %+v", tally)
	}
	if tally.Rows[0].CandidateID != "cand-a" || math.Abs(tally.Rows[0].Percentage-100) > 1e-9 {
		t.Fatalf("remaining contest must hold 100%%: %+v", tally.Rows[0])
	}

	votes, err := store.ListVotesByElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 4 {
		t.Fatalf("ledger must keep orphaned votes, got %d", len(votes))
	}
}

func TestTallyTieDetection(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, map[string]int{"cand-a": 2, "cand-b": 2, "cand-c": 1})

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
	}
	tally, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if !tally.Tied {
		t.Fatalf("expected tie at the top")
	}

	// A clear third place does not make a tie.
	store2 := memory.NewStore()
	seedRace(t, store2, map[string]int{"cand-a": 3, "cand-b": 1, "cand-c": 1})
	uc2 := TallyUseCase{Elections: store2, Candidates: store2, Votes: store2}
	tally2, err := uc2.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally2.Tied {
		t.Fatalf("tie below the leader must not block: %+v", tally2.Rows)
	}
}

func TestTallyEmptyElection(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, nil)

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
	}
	tally, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.TotalVotes != 0 || len(tally.Rows) != 0 || tally.Tied {
		t.Fatalf("empty election must produce an empty tally: %+v", tally)
	}
	if _, ok := tally.Leader(); ok {
		t.Fatalf("empty tally has no leader")
	}

	if _, err := uc.Tally(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound, got %v", err)
	}
}

func TestTallyZeroVotesZeroPercent(t *testing.T) {
	store := memory.NewStore()
	seedRace(t, store, map[string]int{"cand-a": 0, "cand-b": 0})

	uc := TallyUseCase{
		Elections:  store,
		Candidates: store,
		Votes:      store,
	}
	tally, err := uc.Tally(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	for _, row := range tally.Rows {
		if row.Percentage != 0 {
			t.Fatalf("zero ballots must yield zero percent, got %+v", row)
		}
	}
	if !tally.Tied {
		t.Fatalf("all-zero counts share the lead")
	}
}
