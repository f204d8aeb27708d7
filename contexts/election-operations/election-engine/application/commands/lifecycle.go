package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotbox/contexts/election-operations/election-engine/application"
	"ballotbox/contexts/election-operations/election-engine/application/queries"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	"ballotbox/contexts/election-operations/election-engine/domain/schedule"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

type DeclareWinnerCommand struct {
	ElectionID string
	AdminID    string
}

type EndEarlyCommand struct {
	ElectionID string
	AdminID    string
}

// LifecycleUseCase coordinates the election state machine
// upcoming -> ongoing -> ended -> winner declared. It is the entry point the
// surrounding system calls for status, tally recomputation and winner
// declaration; status always comes from the schedule resolver.
type LifecycleUseCase struct {
	Elections ports.ElectionRepository
	Results   ports.ResultRepository
	Tally     queries.TallyUseCase
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator

	// SnapshotsEnabled gates persisting Result rows on RequestTally. The
	// in-memory tally is returned either way.
	SnapshotsEnabled bool
	WinnerEvents     bool
	Logger           *slog.Logger
}

// Status resolves the election's temporal status at the injected clock's now.
func (uc LifecycleUseCase) Status(ctx context.Context, electionID string) (entities.ElectionStatus, error) {
	election, sched, err := uc.loadElection(ctx, electionID)
	if err != nil {
		return "", err
	}
	return schedule.Resolve(election, sched, uc.now()), nil
}

// PreviewTally computes the current tally without touching the Result
// snapshot, for read-only callers.
func (uc LifecycleUseCase) PreviewTally(ctx context.Context, electionID string) (entities.ElectionTally, error) {
	return uc.Tally.Tally(ctx, strings.TrimSpace(electionID))
}

// RequestTally recomputes the tally and, when snapshots are enabled,
// replaces the cached Result rows (delete-then-insert, never merge). Allowed
// in any status; recomputation from votes always agrees with the snapshot.
func (uc LifecycleUseCase) RequestTally(ctx context.Context, electionID string) (entities.ElectionTally, error) {
	logger := application.ResolveLogger(uc.Logger)
	tally, err := uc.Tally.Tally(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.ElectionTally{}, err
	}

	if uc.SnapshotsEnabled {
		rows := make([]entities.Result, 0, len(tally.Rows))
		for _, row := range tally.Rows {
			rows = append(rows, entities.Result{
				ElectionID:  tally.ElectionID,
				CandidateID: row.CandidateID,
				ContestID:   row.ContestID,
				TotalVotes:  row.Votes,
				Percentage:  row.Percentage,
				ComputedAt:  tally.ComputedAt,
			})
		}
		if err := uc.Results.ReplaceResults(ctx, tally.ElectionID, rows); err != nil {
			return entities.ElectionTally{}, err
		}
	}

	logger.Info("tally recomputed",
		"event", "election_tally_recomputed",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", tally.ElectionID,
		"total_votes", tally.TotalVotes,
		"candidates", len(tally.Rows),
		"tied", tally.Tied,
	)
	return tally, nil
}

// DeclareWinner records the winning candidate exactly once. It refuses until
// the election has ended, refuses empty tallies, and refuses to pick among
// tied leaders. The not-yet-declared check and the write share one
// repository transaction.
func (uc LifecycleUseCase) DeclareWinner(ctx context.Context, cmd DeclareWinnerCommand) (entities.TallyRow, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, sched, err := uc.loadElection(ctx, cmd.ElectionID)
	if err != nil {
		return entities.TallyRow{}, err
	}

	now := uc.now()
	if schedule.Resolve(election, sched, now) != entities.StatusEnded {
		return entities.TallyRow{}, domainerrors.ErrElectionNotEnded
	}
	if election.WinnerDeclared {
		return entities.TallyRow{}, domainerrors.ErrWinnerAlreadyDeclared
	}

	tally, err := uc.RequestTally(ctx, election.ElectionID)
	if err != nil {
		return entities.TallyRow{}, err
	}
	leader, ok := tally.Leader()
	if !ok {
		return entities.TallyRow{}, domainerrors.ErrNoCandidates
	}
	if tally.Tied {
		return entities.TallyRow{}, domainerrors.ErrTieUnresolved
	}

	if err := uc.Elections.MarkWinner(ctx, election.ElectionID, leader.CandidateID, now); err != nil {
		return entities.TallyRow{}, err
	}

	if sched != nil {
		declared := now
		sched.ResultsDeclared = &declared
		sched.UpdatedAt = now
		if err := uc.Elections.SaveSchedule(ctx, *sched); err != nil {
			return entities.TallyRow{}, err
		}
	}

	if err := uc.appendWinnerEvent(ctx, election.ElectionID, leader, strings.TrimSpace(cmd.AdminID), now); err != nil {
		return entities.TallyRow{}, err
	}

	logger.Info("winner declared",
		"event", "election_winner_declared",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"candidate_id", leader.CandidateID,
		"votes", leader.Votes,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return leader, nil
}

// EndEarly is the administrative override: it forces the voting window shut
// at now and clears the activation flag, so both resolver tiers report ended
// from here on.
func (uc LifecycleUseCase) EndEarly(ctx context.Context, cmd EndEarlyCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	election, sched, err := uc.loadElection(ctx, cmd.ElectionID)
	if err != nil {
		return err
	}

	now := uc.now()
	endedAt := now
	if sched == nil {
		scheduleID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		started := election.Date.UTC()
		if started.After(now) {
			started = now
		}
		sched = &entities.Schedule{
			ScheduleID:  scheduleID,
			ElectionID:  election.ElectionID,
			VotingStart: &started,
			CreatedAt:   now,
		}
	}
	if sched.VotingStart == nil || sched.VotingStart.After(now) {
		// A future start would invert the window once the end is forced shut.
		started := now
		sched.VotingStart = &started
	}
	sched.VotingEnd = &endedAt
	sched.UpdatedAt = now
	if err := uc.Elections.SaveSchedule(ctx, *sched); err != nil {
		return err
	}

	election.Active = false
	election.UpdatedAt = now
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return err
	}

	logger.Info("election ended early",
		"event", "election_ended_early",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return nil
}

func (uc LifecycleUseCase) loadElection(ctx context.Context, electionID string) (entities.Election, *entities.Schedule, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, nil, err
	}
	sched, found, err := uc.Elections.GetSchedule(ctx, election.ElectionID)
	if err != nil {
		return entities.Election{}, nil, err
	}
	if !found {
		return election, nil, nil
	}
	return election, &sched, nil
}

func (uc LifecycleUseCase) appendWinnerEvent(
	ctx context.Context,
	electionID string,
	winner entities.TallyRow,
	adminID string,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil || !uc.WinnerEvents {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, EventWinnerDeclared, electionID, occurredAt, map[string]any{
		"election_id":  electionID,
		"candidate_id": winner.CandidateID,
		"votes":        winner.Votes,
		"percentage":   winner.Percentage,
		"declared_by":  adminID,
		"occurred_at":  occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc LifecycleUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
