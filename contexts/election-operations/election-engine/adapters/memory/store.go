package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	"ballotbox/contexts/election-operations/election-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.RWMutex

	elections  map[string]entities.Election
	schedules  map[string]entities.Schedule
	candidates map[string]entities.Candidate
	contests   map[string]entities.Contest
	votes      map[string]entities.Vote
	results    map[string][]entities.Result
	outbox     map[string]outboxRecord

	// voterBallots holds "electionID|voterID" keys so the one-ballot rule
	// holds under the same lock that inserts the vote.
	voterBallots map[string]string
}

func NewStore() *Store {
	return &Store{
		elections:    make(map[string]entities.Election),
		schedules:    make(map[string]entities.Schedule),
		candidates:   make(map[string]entities.Candidate),
		contests:     make(map[string]entities.Contest),
		votes:        make(map[string]entities.Vote),
		results:      make(map[string][]entities.Result),
		outbox:       make(map[string]outboxRecord),
		voterBallots: make(map[string]string),
	}
}

func (s *Store) SetElection(election entities.Election) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
}

func (s *Store) SetSchedule(sched entities.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[strings.TrimSpace(sched.ElectionID)] = sched
}

func (s *Store) SetCandidate(candidate entities.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
}

func (s *Store) SetContest(contest entities.Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[strings.TrimSpace(contest.ContestID)] = contest
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		items = append(items, election)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ElectionID < items[j].ElectionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteElectionCascade(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	electionID = strings.TrimSpace(electionID)
	delete(s.elections, electionID)
	delete(s.schedules, electionID)
	delete(s.results, electionID)
	for key, candidate := range s.candidates {
		if candidate.ElectionID == electionID {
			delete(s.candidates, key)
		}
	}
	for key, contest := range s.contests {
		if contest.ElectionID == electionID {
			delete(s.contests, key)
		}
	}
	for key, vote := range s.votes {
		if vote.ElectionID == electionID {
			delete(s.votes, key)
			delete(s.voterBallots, ballotKey(vote.ElectionID, vote.VoterID))
		}
	}
	return nil
}

func (s *Store) GetSchedule(_ context.Context, electionID string) (entities.Schedule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Schedule{}, false, nil
	}
	return sched, true, nil
}

func (s *Store) SaveSchedule(_ context.Context, sched entities.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[strings.TrimSpace(sched.ElectionID)] = sched
	return nil
}

func (s *Store) MarkWinner(_ context.Context, electionID string, candidateID string, declaredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return domainerrors.ErrElectionNotFound
	}
	if election.WinnerDeclared {
		return domainerrors.ErrWinnerAlreadyDeclared
	}
	at := declaredAt.UTC()
	election.WinnerDeclared = true
	election.WinnerCandidateID = strings.TrimSpace(candidateID)
	election.WinnerDeclaredAt = &at
	election.UpdatedAt = at
	s.elections[strings.TrimSpace(electionID)] = election
	return nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidatesByElection(_ context.Context, electionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CandidateID < items[j].CandidateID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) FindLiveApplication(
	_ context.Context,
	electionID string,
	voterID string,
) (entities.Candidate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	electionID = strings.TrimSpace(electionID)
	voterID = strings.TrimSpace(voterID)

	var (
		found entities.Candidate
		ok    bool
	)
	for _, candidate := range s.candidates {
		if candidate.ElectionID != electionID || candidate.VoterID != voterID {
			continue
		}
		if candidate.Status != entities.CandidateStatusPending &&
			candidate.Status != entities.CandidateStatusApproved {
			continue
		}
		if !ok || candidate.UpdatedAt.After(found.UpdatedAt) {
			found = candidate
			ok = true
		}
	}
	return found, ok, nil
}

func (s *Store) SaveContest(_ context.Context, contest entities.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidateID := strings.TrimSpace(contest.CandidateID)
	for _, existing := range s.contests {
		if existing.CandidateID == candidateID && existing.ContestID != strings.TrimSpace(contest.ContestID) {
			return nil
		}
	}
	s.contests[strings.TrimSpace(contest.ContestID)] = contest
	return nil
}

func (s *Store) GetContest(_ context.Context, contestID string) (entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	return contest, nil
}

func (s *Store) GetContestByCandidate(_ context.Context, candidateID string) (entities.Contest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, contest := range s.contests {
		if contest.CandidateID == strings.TrimSpace(candidateID) {
			return contest, true, nil
		}
	}
	return entities.Contest{}, false, nil
}

func (s *Store) ListContestsByElection(_ context.Context, electionID string) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Contest, 0)
	for _, contest := range s.contests {
		if contest.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, contest)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ContestID < items[j].ContestID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteContest(_ context.Context, contestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contests, strings.TrimSpace(contestID))
	return nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ballotKey(vote.ElectionID, vote.VoterID)
	if _, taken := s.voterBallots[key]; taken {
		return domainerrors.ErrAlreadyVoted
	}
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	s.voterBallots[key] = strings.TrimSpace(vote.VoteID)
	return nil
}

func (s *Store) HasVoted(_ context.Context, electionID string, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.voterBallots[ballotKey(electionID, voterID)]
	return taken, nil
}

func (s *Store) CountVotesByContest(_ context.Context, contestID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.ContestID == strings.TrimSpace(contestID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListVotesByElection(_ context.Context, electionID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].VoteID < items[j].VoteID
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) ReplaceResults(_ context.Context, electionID string, results []entities.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[strings.TrimSpace(electionID)] = append([]entities.Result(nil), results...)
	return nil
}

func (s *Store) ListResultsByElection(_ context.Context, electionID string) ([]entities.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]entities.Result(nil), s.results[strings.TrimSpace(electionID)]...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalVotes == items[j].TotalVotes {
			return items[i].CandidateID < items[j].CandidateID
		}
		return items[i].TotalVotes > items[j].TotalVotes
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, ok := s.outbox[outboxID]; ok {
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func ballotKey(electionID string, voterID string) string {
	return strings.TrimSpace(electionID) + "|" + strings.TrimSpace(voterID)
}

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.CandidateRepository = (*Store)(nil)
var _ ports.VoteRepository = (*Store)(nil)
var _ ports.ResultRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
