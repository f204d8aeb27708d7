package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/election-operations/election-engine/application"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

// ApplyCommand is the write-model input for a candidacy application.
type ApplyCommand struct {
	ElectionID string
	VoterID    string
	Name       string
	Party      string
	Symbol     string
	Manifesto  string
	PhotoURL   string
}

type ApproveCommand struct {
	CandidateID string
	Position    string
	AdminID     string
}

type RejectCommand struct {
	CandidateID string
	Reason      string
	AdminID     string
}

type RevertCommand struct {
	CandidateID string
	AdminID     string
}

// CandidacyUseCase owns the candidate application state machine:
// pending -> approved, pending -> rejected, approved -> pending. Its side
// effects are observable only through Contest row presence; tallies never
// read Candidate.Status.
type CandidacyUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Apply files a pending application. A voter with a live (pending or
// approved) application for the same election gets ErrDuplicateApplication;
// a rejected application does not block re-applying, which creates a fresh
// candidate row.
func (uc CandidacyUseCase) Apply(ctx context.Context, cmd ApplyCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	voterID := strings.TrimSpace(cmd.VoterID)
	name := strings.TrimSpace(cmd.Name)
	if electionID == "" || voterID == "" || name == "" {
		logger.Warn("candidacy apply validation failed",
			"event", "election_candidacy_apply_validation_failed",
			"module", "election-operations/election-engine",
			"layer", "application",
			"election_id", electionID,
			"voter_id", voterID,
		)
		return entities.Candidate{}, domainerrors.ErrInvalidInput
	}

	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return entities.Candidate{}, err
	}

	if _, found, err := uc.Candidates.FindLiveApplication(ctx, electionID, voterID); err != nil {
		return entities.Candidate{}, err
	} else if found {
		return entities.Candidate{}, domainerrors.ErrDuplicateApplication
	}

	now := uc.now()
	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		CandidateID: candidateID,
		ElectionID:  electionID,
		VoterID:     voterID,
		Name:        name,
		Party:       strings.TrimSpace(cmd.Party),
		Symbol:      strings.TrimSpace(cmd.Symbol),
		Manifesto:   strings.TrimSpace(cmd.Manifesto),
		PhotoURL:    strings.TrimSpace(cmd.PhotoURL),
		Status:      entities.CandidateStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}

	logger.Info("candidacy application filed",
		"event", "election_candidacy_applied",
		"module", "election-operations/election-engine",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"election_id", electionID,
		"voter_id", voterID,
	)
	return candidate, nil
}

// Approve moves a pending candidate to approved and creates exactly one
// Contest row. Re-approving an already-approved candidate is a no-op.
func (uc CandidacyUseCase) Approve(ctx context.Context, cmd ApproveCommand) (entities.Contest, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidate, err := uc.Candidates.GetCandidate(ctx, strings.TrimSpace(cmd.CandidateID))
	if err != nil {
		return entities.Contest{}, err
	}

	if candidate.Status == entities.CandidateStatusApproved {
		if contest, found, err := uc.Candidates.GetContestByCandidate(ctx, candidate.CandidateID); err != nil {
			return entities.Contest{}, err
		} else if found {
			return contest, nil
		}
		// Approved without a contest row should not happen; fall through and
		// recreate the row to restore the invariant.
	} else if candidate.Status != entities.CandidateStatusPending {
		return entities.Contest{}, domainerrors.ErrInvalidStateTransition
	}

	now := uc.now()
	contestID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Contest{}, err
	}
	contest := entities.Contest{
		ContestID:   contestID,
		ElectionID:  candidate.ElectionID,
		CandidateID: candidate.CandidateID,
		Position:    strings.TrimSpace(cmd.Position),
		CreatedAt:   now,
	}
	if err := uc.Candidates.SaveContest(ctx, contest); err != nil {
		return entities.Contest{}, err
	}

	candidate.Status = entities.CandidateStatusApproved
	candidate.RejectionReason = ""
	candidate.UpdatedAt = now
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return entities.Contest{}, err
	}

	if err := uc.appendReviewEvent(ctx, candidate, "approved", strings.TrimSpace(cmd.AdminID), "", now); err != nil {
		return entities.Contest{}, err
	}

	logger.Info("candidate approved",
		"event", "election_candidacy_approved",
		"module", "election-operations/election-engine",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"election_id", candidate.ElectionID,
		"contest_id", contest.ContestID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return contest, nil
}

// Reject moves a pending candidate to rejected and records the admin-supplied
// reason. Any contest row is removed; votes already cast stay in storage and
// are excluded from tallies because the contest join is gone.
func (uc CandidacyUseCase) Reject(ctx context.Context, cmd RejectCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	candidate, err := uc.Candidates.GetCandidate(ctx, strings.TrimSpace(cmd.CandidateID))
	if err != nil {
		return err
	}
	if candidate.Status != entities.CandidateStatusPending {
		return domainerrors.ErrInvalidStateTransition
	}

	now := uc.now()
	if err := uc.removeContest(ctx, candidate.CandidateID); err != nil {
		return err
	}

	candidate.Status = entities.CandidateStatusRejected
	candidate.RejectionReason = strings.TrimSpace(cmd.Reason)
	candidate.UpdatedAt = now
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return err
	}

	if err := uc.appendReviewEvent(ctx, candidate, "rejected", strings.TrimSpace(cmd.AdminID), candidate.RejectionReason, now); err != nil {
		return err
	}

	logger.Info("candidate rejected",
		"event", "election_candidacy_rejected",
		"module", "election-operations/election-engine",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"election_id", candidate.ElectionID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return nil
}

// RevertToPending is the explicit approved -> pending transition. The contest
// row is removed; existing votes are kept and become orphaned.
func (uc CandidacyUseCase) RevertToPending(ctx context.Context, cmd RevertCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	candidate, err := uc.Candidates.GetCandidate(ctx, strings.TrimSpace(cmd.CandidateID))
	if err != nil {
		return err
	}
	if candidate.Status != entities.CandidateStatusApproved {
		return domainerrors.ErrInvalidStateTransition
	}

	now := uc.now()
	if err := uc.removeContest(ctx, candidate.CandidateID); err != nil {
		return err
	}

	candidate.Status = entities.CandidateStatusPending
	candidate.UpdatedAt = now
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return err
	}

	logger.Info("candidate reverted to pending",
		"event", "election_candidacy_reverted",
		"module", "election-operations/election-engine",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"election_id", candidate.ElectionID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return nil
}

func (uc CandidacyUseCase) removeContest(ctx context.Context, candidateID string) error {
	contest, found, err := uc.Candidates.GetContestByCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return uc.Candidates.DeleteContest(ctx, contest.ContestID)
}

func (uc CandidacyUseCase) appendReviewEvent(
	ctx context.Context,
	candidate entities.Candidate,
	decision string,
	adminID string,
	reason string,
	occurredAt time.Time,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"candidate_id": candidate.CandidateID,
		"election_id":  candidate.ElectionID,
		"voter_id":     candidate.VoterID,
		"decision":     decision,
		"reviewed_by":  adminID,
		"occurred_at":  occurredAt.Format(time.RFC3339),
	}
	if reason != "" {
		data["reason"] = reason
	}
	envelope, err := newElectionEnvelope(eventID, EventApplicationReviewed, candidate.ElectionID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc CandidacyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
