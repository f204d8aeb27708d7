package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ballotbox/contexts/election-operations/election-engine/ports"
)

type subscription struct {
	Topic   string
	Group   string
	Handler func(context.Context, ports.EventEnvelope) error
}

type fakeSubscriber struct {
	subscriptions []subscription
}

func (s *fakeSubscriber) Subscribe(_ context.Context, topic string, consumerGroup string, handler func(context.Context, ports.EventEnvelope) error) error {
	s.subscriptions = append(s.subscriptions, subscription{Topic: topic, Group: consumerGroup, Handler: handler})
	return nil
}

func TestNotificationConsumerSubscribesElectionTopics(t *testing.T) {
	subscriber := &fakeSubscriber{}
	consumer := NotificationConsumer{Subscriber: subscriber, ConsumerGroup: "election-notifications-cg"}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	want := map[string]bool{
		"election.application.reviewed": false,
		"election.vote.recorded":        false,
		"election.winner.declared":      false,
	}
	if len(subscriber.subscriptions) != len(want) {
		t.Fatalf("expected %d subscriptions, got %d", len(want), len(subscriber.subscriptions))
	}
	for _, sub := range subscriber.subscriptions {
		seen, known := want[sub.Topic]
		if !known {
			t.Fatalf("unexpected topic %q", sub.Topic)
		}
		if seen {
			t.Fatalf("topic %q subscribed twice", sub.Topic)
		}
		want[sub.Topic] = true
		if sub.Group != "election-notifications-cg" {
			t.Fatalf("expected shared consumer group, got %q", sub.Group)
		}
	}
}

func TestNotificationConsumerDefaultsGroup(t *testing.T) {
	subscriber := &fakeSubscriber{}
	consumer := NotificationConsumer{Subscriber: subscriber}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for _, sub := range subscriber.subscriptions {
		if sub.Group == "" {
			t.Fatalf("consumer group must never be empty")
		}
	}
}

func TestNotificationConsumerHandlesEvents(t *testing.T) {
	subscriber := &fakeSubscriber{}
	consumer := NotificationConsumer{Subscriber: subscriber}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	event := ports.EventEnvelope{
		EventID:      "event-1",
		EventType:    "election.winner.declared",
		OccurredAt:   time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC),
		PartitionKey: "election-1",
		Data:         json.RawMessage(`{"election_id":"election-1","candidate_id":"cand-a"}`),
	}
	for _, sub := range subscriber.subscriptions {
		if err := sub.Handler(context.Background(), event); err != nil {
			t.Fatalf("handler rejected a well-formed event: %v", err)
		}
		if err := sub.Handler(context.Background(), ports.EventEnvelope{
			EventID:   "event-bad",
			EventType: sub.Topic,
			Data:      json.RawMessage(`not json`),
		}); err == nil {
			t.Fatalf("handler must surface malformed payloads")
		}
	}
}
