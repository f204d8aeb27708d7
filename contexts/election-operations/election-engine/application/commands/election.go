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

type CreateElectionCommand struct {
	Name        string
	Category    string
	Date        time.Time
	Description string
	Active      bool
	AdminID     string
}

type UpdateElectionCommand struct {
	ElectionID  string
	Name        string
	Category    string
	Date        *time.Time
	Description *string
	Active      *bool
	AdminID     string
}

type AttachScheduleCommand struct {
	ElectionID      string
	NominationStart *time.Time
	NominationEnd   *time.Time
	VotingStart     *time.Time
	VotingEnd       *time.Time
	AdminID         string
}

// ElectionAdminUseCase covers the administrator CRUD surface around
// elections and their optional schedules.
type ElectionAdminUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ElectionAdminUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	adminID := strings.TrimSpace(cmd.AdminID)
	if name == "" || adminID == "" || cmd.Date.IsZero() {
		return entities.Election{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	election := entities.Election{
		ElectionID:  electionID,
		Name:        name,
		Category:    strings.TrimSpace(cmd.Category),
		Date:        cmd.Date.UTC(),
		Active:      cmd.Active,
		Description: strings.TrimSpace(cmd.Description),
		AdminID:     adminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election created",
		"event", "election_created",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"admin_id", adminID,
	)
	return election, nil
}

func (uc ElectionAdminUseCase) UpdateElection(ctx context.Context, cmd UpdateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Election{}, err
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		election.Name = name
	}
	if category := strings.TrimSpace(cmd.Category); category != "" {
		election.Category = category
	}
	if cmd.Date != nil && !cmd.Date.IsZero() {
		election.Date = cmd.Date.UTC()
	}
	if cmd.Description != nil {
		election.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.Active != nil {
		election.Active = *cmd.Active
	}
	election.UpdatedAt = uc.now()

	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election updated",
		"event", "election_updated",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return election, nil
}

// AttachSchedule creates or edits the election's 1:1 schedule. Passing a
// window with start after end is rejected up front so the resolver's
// partition property holds for every stored schedule.
func (uc ElectionAdminUseCase) AttachSchedule(ctx context.Context, cmd AttachScheduleCommand) (entities.Schedule, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Schedule{}, err
	}
	if cmd.VotingStart != nil && cmd.VotingEnd != nil && cmd.VotingStart.After(*cmd.VotingEnd) {
		return entities.Schedule{}, domainerrors.ErrInvalidInput
	}

	now := uc.now()
	sched, found, err := uc.Elections.GetSchedule(ctx, election.ElectionID)
	if err != nil {
		return entities.Schedule{}, err
	}
	if !found {
		scheduleID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Schedule{}, err
		}
		sched = entities.Schedule{
			ScheduleID: scheduleID,
			ElectionID: election.ElectionID,
			CreatedAt:  now,
		}
	}

	sched.NominationStart = normalizeUTC(cmd.NominationStart)
	sched.NominationEnd = normalizeUTC(cmd.NominationEnd)
	sched.VotingStart = normalizeUTC(cmd.VotingStart)
	sched.VotingEnd = normalizeUTC(cmd.VotingEnd)
	sched.UpdatedAt = now

	if err := uc.Elections.SaveSchedule(ctx, sched); err != nil {
		return entities.Schedule{}, err
	}
	logger.Info("election schedule saved",
		"event", "election_schedule_saved",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"admin_id", strings.TrimSpace(cmd.AdminID),
	)
	return sched, nil
}

// DeleteElection cascades to the schedule, candidates, contests, votes and
// result snapshot. Dependent votes are never left behind.
func (uc ElectionAdminUseCase) DeleteElection(ctx context.Context, electionID string, adminID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if _, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID)); err != nil {
		return err
	}
	if err := uc.Elections.DeleteElectionCascade(ctx, strings.TrimSpace(electionID)); err != nil {
		return err
	}
	logger.Info("election deleted",
		"event", "election_deleted",
		"module", "election-operations/election-engine",
		"layer", "application",
		"election_id", strings.TrimSpace(electionID),
		"admin_id", strings.TrimSpace(adminID),
	)
	return nil
}

func (uc ElectionAdminUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func normalizeUTC(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
