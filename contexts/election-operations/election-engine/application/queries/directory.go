package queries

import (
	"context"
	"strings"
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	"ballotbox/contexts/election-operations/election-engine/domain/schedule"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

// ElectionView is an election together with its optional schedule and the
// resolved temporal status.
type ElectionView struct {
	Election entities.Election
	Schedule *entities.Schedule
	Status   entities.ElectionStatus
}

// DirectoryUseCase serves read views of elections with their status resolved
// through the single schedule resolver, so list and detail pages can never
// drift from the canonical status rule.
type DirectoryUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Snapshots  ports.ResultRepository
	Clock      ports.Clock
}

func (uc DirectoryUseCase) GetElection(ctx context.Context, electionID string) (ElectionView, error) {
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return ElectionView{}, err
	}
	return uc.view(ctx, election)
}

func (uc DirectoryUseCase) ListElections(ctx context.Context) ([]ElectionView, error) {
	elections, err := uc.Elections.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ElectionView, 0, len(elections))
	for _, election := range elections {
		view, err := uc.view(ctx, election)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc DirectoryUseCase) ListCandidates(ctx context.Context, electionID string) ([]entities.Candidate, error) {
	if _, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID)); err != nil {
		return nil, err
	}
	return uc.Candidates.ListCandidatesByElection(ctx, strings.TrimSpace(electionID))
}

// Results returns the cached snapshot for an election. The snapshot is
// derived state; RequestTally regenerates it from votes at any time.
func (uc DirectoryUseCase) Results(ctx context.Context, electionID string) ([]entities.Result, error) {
	if _, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID)); err != nil {
		return nil, err
	}
	return uc.Snapshots.ListResultsByElection(ctx, strings.TrimSpace(electionID))
}

func (uc DirectoryUseCase) view(ctx context.Context, election entities.Election) (ElectionView, error) {
	sched, found, err := uc.Elections.GetSchedule(ctx, election.ElectionID)
	if err != nil {
		return ElectionView{}, err
	}
	var schedPtr *entities.Schedule
	if found {
		schedPtr = &sched
	}
	return ElectionView{
		Election: election,
		Schedule: schedPtr,
		Status:   schedule.Resolve(election, schedPtr, uc.now()),
	}, nil
}

func (uc DirectoryUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
