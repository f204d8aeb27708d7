package commands

import (
	"encoding/json"
	"time"

	"ballotbox/contexts/election-operations/election-engine/ports"
)

const (
	EventApplicationReviewed = "election.application.reviewed"
	EventVoteRecorded        = "election.vote.recorded"
	EventWinnerDeclared      = "election.winner.declared"
)

// newElectionEnvelope builds command-side event envelopes. Events are
// partitioned by election so election-scoped consumers see ordered streams.
func newElectionEnvelope(
	eventID string,
	eventType string,
	electionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "election_id",
		PartitionKey:     electionID,
		Data:             payload,
	}, nil
}
