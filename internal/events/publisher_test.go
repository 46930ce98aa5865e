package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScoringEvent(t *testing.T) {
	payload := AttemptStartedEvent{
		AttemptID: "attempt-1",
		CaseID:    "case-1",
		StudentID: "student-1",
		StartedAt: time.Now().UTC(),
	}

	event := NewScoringEvent(EventAttemptStarted, payload)

	if event.ID == "" {
		t.Error("Expected event ID to be set")
	}
	if event.Type != EventAttemptStarted {
		t.Errorf("Expected event type %s, got %s", EventAttemptStarted, event.Type)
	}
	if event.Source != "scoring-service" {
		t.Errorf("Expected source 'scoring-service', got '%s'", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}

	data, ok := event.Data.(AttemptStartedEvent)
	if !ok {
		t.Fatalf("Expected AttemptStartedEvent payload, got %T", event.Data)
	}
	if data.AttemptID != "attempt-1" {
		t.Errorf("Expected attempt_id 'attempt-1', got '%s'", data.AttemptID)
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	t.Run("RecordsPublishedEvents", func(t *testing.T) {
		event := NewScoringEvent(EventAttemptFinalized, AttemptFinalizedEvent{
			AttemptID:   "attempt-1",
			CaseID:      "case-1",
			TotalPoints: 9,
			MaxPoints:   12,
		})

		if err := publisher.PublishScoringEvent(ctx, event); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 published event, got %d", len(published))
		}
		if published[0].Type != EventAttemptFinalized {
			t.Errorf("Expected type %s, got %s", EventAttemptFinalized, published[0].Type)
		}
	})

	t.Run("ClearEvents", func(t *testing.T) {
		publisher.ClearEvents()

		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("Expected no events after clearing")
		}
	})

	t.Run("CloseIsNoOp", func(t *testing.T) {
		if err := publisher.Close(); err != nil {
			t.Errorf("Expected no error on close, got %v", err)
		}
	})
}
