package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishTransferCompleted(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, "payments.transfer_completed", zerolog.Nop())

	event := &domain.TransferCompleted{
		Reference:        "ref-1",
		SenderID:         "a",
		RecipientID:      "b",
		Amount:           40000,
		Currency:         "KES",
		SenderBalance:    60000,
		RecipientBalance: 40000,
		OccurredAt:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := p.PublishTransferCompleted(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.messages))
	}
	msg := w.messages[0]
	if string(msg.Key) != "ref-1" {
		t.Fatalf("key = %q, want ref-1", msg.Key)
	}

	var body map[string]any
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["reference"] != "ref-1" || body["amount"] != float64(40000) {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, leaked := body["SenderBalance"]; leaked {
		t.Fatalf("balances must not be published: %v", body)
	}

	_ = p.Close()
	if !w.closed {
		t.Fatalf("writer not closed")
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("no brokers")
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: boom}, "t", zerolog.Nop())
	if err := p.PublishTransferCompleted(context.Background(), &domain.TransferCompleted{Reference: "r"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}
