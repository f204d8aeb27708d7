package ports

import (
	"context"
	"encoding/json"
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
)

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElections(ctx context.Context) ([]entities.Election, error)
	// DeleteElectionCascade removes the election together with its schedule,
	// candidates, contests, votes and result snapshot in one transaction.
	// This is the only path that deletes votes.
	DeleteElectionCascade(ctx context.Context, electionID string) error

	GetSchedule(ctx context.Context, electionID string) (entities.Schedule, bool, error)
	SaveSchedule(ctx context.Context, sched entities.Schedule) error

	// MarkWinner records the declared winner. The not-yet-declared check and
	// the write run in the same transaction; a second call fails with
	// ErrWinnerAlreadyDeclared.
	MarkWinner(ctx context.Context, electionID string, candidateID string, declaredAt time.Time) error
}

type CandidateRepository interface {
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidatesByElection(ctx context.Context, electionID string) ([]entities.Candidate, error)
	// FindLiveApplication returns the voter's pending or approved candidate
	// row for an election, if any. Rejected rows do not count.
	FindLiveApplication(ctx context.Context, electionID string, voterID string) (entities.Candidate, bool, error)

	SaveContest(ctx context.Context, contest entities.Contest) error
	GetContest(ctx context.Context, contestID string) (entities.Contest, error)
	GetContestByCandidate(ctx context.Context, candidateID string) (entities.Contest, bool, error)
	ListContestsByElection(ctx context.Context, electionID string) ([]entities.Contest, error)
	DeleteContest(ctx context.Context, contestID string) error
}

type VoteRepository interface {
	// InsertVote records a ballot. The storage layer enforces uniqueness on
	// (election_id, voter_id) and surfaces a duplicate as ErrAlreadyVoted,
	// so a double-submit race resolves to exactly one success.
	InsertVote(ctx context.Context, vote entities.Vote) error
	HasVoted(ctx context.Context, electionID string, voterID string) (bool, error)
	CountVotesByContest(ctx context.Context, contestID string) (int, error)
	ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error)
}

type ResultRepository interface {
	// ReplaceResults swaps the cached snapshot for an election:
	// delete-then-insert, never merge.
	ReplaceResults(ctx context.Context, electionID string, rows []entities.Result) error
	ListResultsByElection(ctx context.Context, electionID string) ([]entities.Result, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}
