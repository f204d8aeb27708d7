package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/election-operations/election-engine/application"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	"ballotbox/contexts/election-operations/election-engine/domain/schedule"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

type CastVoteCommand struct {
	ContestID     string
	VoterID       string
	SourceAddress string
}

// BallotUseCase is the vote ledger. It records at most one vote per
// (voter, election) pair; the decisive duplicate check is the storage
// uniqueness constraint, so concurrent double-submits resolve to exactly one
// success and one ErrAlreadyVoted. Votes are never updated or deleted here.
type BallotUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Cast records a ballot for a contest. Preconditions are evaluated in a
// fixed order with distinct failures: voting window open (ErrVotingNotOpen),
// no prior ballot in the election (ErrAlreadyVoted), contest backed by an
// active election (ErrContestNotFound).
func (uc BallotUseCase) Cast(ctx context.Context, cmd CastVoteCommand) (entities.VoteReceipt, error) {
	logger := application.ResolveLogger(uc.Logger)
	contestID := strings.TrimSpace(cmd.ContestID)
	voterID := strings.TrimSpace(cmd.VoterID)
	if contestID == "" || voterID == "" {
		logger.Warn("ballot cast validation failed",
			"event", "election_ballot_cast_validation_failed",
			"module", "election-operations/election-engine",
			"layer", "application",
			"contest_id", contestID,
			"voter_id", voterID,
		)
		return entities.VoteReceipt{}, domainerrors.ErrInvalidInput
	}

	contest, err := uc.Candidates.GetContest(ctx, contestID)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	election, err := uc.Elections.GetElection(ctx, contest.ElectionID)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	sched, found, err := uc.Elections.GetSchedule(ctx, election.ElectionID)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	var schedPtr *entities.Schedule
	if found {
		schedPtr = &sched
	}

	now := uc.now()
	if schedule.Resolve(election, schedPtr, now) != entities.StatusOngoing {
		return entities.VoteReceipt{}, domainerrors.ErrVotingNotOpen
	}

	if voted, err := uc.Votes.HasVoted(ctx, election.ElectionID, voterID); err != nil {
		return entities.VoteReceipt{}, err
	} else if voted {
		return entities.VoteReceipt{}, domainerrors.ErrAlreadyVoted
	}

	if !election.Active {
		return entities.VoteReceipt{}, domainerrors.ErrContestNotFound
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	vote := entities.Vote{
		VoteID:        voteID,
		ContestID:     contest.ContestID,
		ElectionID:    election.ElectionID,
		VoterID:       voterID,
		SourceAddress: strings.TrimSpace(cmd.SourceAddress),
		CastAt:        now,
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		// The constraint turns a lost race or a retried duplicate into a
		// deterministic ErrAlreadyVoted.
		return entities.VoteReceipt{}, err
	}

	if err := uc.appendVoteEvent(ctx, vote); err != nil {
		return entities.VoteReceipt{}, err
	}

	logger.Info("ballot recorded",
		"event", "election_ballot_recorded",
		"module", "election-operations/election-engine",
		"layer", "application",
		"vote_id", vote.VoteID,
		"election_id", vote.ElectionID,
		"contest_id", vote.ContestID,
	)
	return entities.VoteReceipt{VoteID: vote.VoteID, RecordedAt: vote.CastAt}, nil
}

func (uc BallotUseCase) appendVoteEvent(ctx context.Context, vote entities.Vote) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, EventVoteRecorded, vote.ElectionID, vote.CastAt, map[string]any{
		"vote_id":     vote.VoteID,
		"election_id": vote.ElectionID,
		"contest_id":  vote.ContestID,
		"occurred_at": vote.CastAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc BallotUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
