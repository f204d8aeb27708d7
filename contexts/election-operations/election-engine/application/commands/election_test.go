package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"ballotbox/contexts/election-operations/election-engine/adapters/memory"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
)

func newAdmin(store *memory.Store, now time.Time) ElectionAdminUseCase {
	return ElectionAdminUseCase{
		Elections: store,
		Clock:     fixedClock{now: now},
		IDGen:     newSeqIDGen("election"),
	}
}

func TestElectionCreateValidation(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	uc := newAdmin(store, now)

	cases := []struct {
		name string
		cmd  CreateElectionCommand
	}{
		{"blank name", CreateElectionCommand{Name: "   ", Date: now, AdminID: "admin-1"}},
		{"zero date", CreateElectionCommand{Name: "Race", AdminID: "admin-1"}},
		{"missing admin", CreateElectionCommand{Name: "Race", Date: now}},
	}
	for _, tc := range cases {
		if _, err := uc.CreateElection(context.Background(), tc.cmd); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	created, err := uc.CreateElection(context.Background(), CreateElectionCommand{
		Name:    "  Race  ",
		Date:    now.Add(48 * time.Hour),
		AdminID: "admin-1",
		Active:  true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Name != "Race" {
		t.Fatalf("name must be trimmed, got %q", created.Name)
	}
	if created.ElectionID == "" {
		t.Fatalf("created election must carry a generated id")
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("created_at must come from the clock, got %v", created.CreatedAt)
	}
}

func TestElectionUpdatePartial(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedElection(store, "election-1", now.Add(72*time.Hour), true)
	uc := newAdmin(store, now)

	inactive := false
	updated, err := uc.UpdateElection(context.Background(), UpdateElectionCommand{
		ElectionID: "election-1",
		Active:     &inactive,
		AdminID:    "admin-1",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("active flag must follow the patch")
	}
	if updated.Name != "Student Council election-1" {
		t.Fatalf("untouched fields must survive, got %q", updated.Name)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Fatalf("updated_at must move to the clock, got %v", updated.UpdatedAt)
	}

	if _, err := uc.UpdateElection(context.Background(), UpdateElectionCommand{ElectionID: "missing"}); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound, got %v", err)
	}
}

func TestElectionAttachScheduleRejectsInvertedWindow(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedElection(store, "election-1", now.Add(72*time.Hour), true)
	uc := newAdmin(store, now)

	start := now.Add(48 * time.Hour)
	end := start.Add(-time.Minute)
	_, err := uc.AttachSchedule(context.Background(), AttachScheduleCommand{
		ElectionID:  "election-1",
		VotingStart: &start,
		VotingEnd:   &end,
		AdminID:     "admin-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for start after end, got %v", err)
	}
	if _, found, err := store.GetSchedule(context.Background(), "election-1"); err != nil || found {
		t.Fatalf("rejected window must not be stored (found=%v, err=%v)", found, err)
	}
}

func TestElectionAttachScheduleUpsert(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedElection(store, "election-1", now.Add(72*time.Hour), true)
	uc := newAdmin(store, now)

	start := now.Add(48 * time.Hour)
	end := start.Add(4 * time.Hour)
	first, err := uc.AttachSchedule(context.Background(), AttachScheduleCommand{
		ElectionID:  "election-1",
		VotingStart: &start,
		VotingEnd:   &end,
		AdminID:     "admin-1",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if first.ScheduleID == "" || first.VotingStart == nil || !first.VotingStart.Equal(start) {
		t.Fatalf("schedule not stored as sent: %+v", first)
	}

	// A second attach edits the same row instead of creating a sibling.
	laterStart := start.Add(24 * time.Hour)
	laterEnd := laterStart.Add(4 * time.Hour)
	second, err := uc.AttachSchedule(context.Background(), AttachScheduleCommand{
		ElectionID:  "election-1",
		VotingStart: &laterStart,
		VotingEnd:   &laterEnd,
		AdminID:     "admin-1",
	})
	if err != nil {
		t.Fatalf("second attach failed: %v", err)
	}
	if second.ScheduleID != first.ScheduleID {
		t.Fatalf("schedule is 1:1 per election, got ids %q and %q", first.ScheduleID, second.ScheduleID)
	}
	if second.VotingStart == nil || !second.VotingStart.Equal(laterStart) {
		t.Fatalf("edit must replace the window: %+v", second)
	}
	if second.NominationStart != nil {
		t.Fatalf("omitted fields clear on edit: %+v", second)
	}
}

func TestElectionDeleteCascade(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seedElection(store, "election-1", now, true)
	store.SetCandidate(entities.Candidate{
		CandidateID: "cand-1",
		ElectionID:  "election-1",
		Name:        "Ada",
		Status:      entities.CandidateStatusApproved,
	})
	store.SetContest(entities.Contest{
		ContestID:   "contest-1",
		ElectionID:  "election-1",
		CandidateID: "cand-1",
	})
	if err := store.InsertVote(context.Background(), entities.Vote{
		VoteID:     "vote-1",
		ContestID:  "contest-1",
		ElectionID: "election-1",
		VoterID:    "voter-1",
		CastAt:     now,
	}); err != nil {
		t.Fatalf("seed vote failed: %v", err)
	}

	uc := newAdmin(store, now)
	if err := uc.DeleteElection(context.Background(), "election-1", "admin-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.GetElection(context.Background(), "election-1"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("election row must be gone, got %v", err)
	}
	votes, err := store.ListVotesByElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("dependent votes must cascade, %d remain", len(votes))
	}
	candidates, err := store.ListCandidatesByElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("dependent candidates must cascade, %d remain", len(candidates))
	}

	if err := uc.DeleteElection(context.Background(), "election-1", "admin-1"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("deleting twice must report not found, got %v", err)
	}
}
