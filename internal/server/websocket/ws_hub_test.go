package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

func TestPublishTransferCompletedReportsFullHub(t *testing.T) {
	h := NewWsHub(zerolog.Nop())
	event := &domain.TransferCompleted{
		Reference:   "ref",
		SenderID:    "a",
		RecipientID: "b",
		Amount:      100,
		Currency:    "KES",
		OccurredAt:  time.Now(),
	}

	// The hub is not running, so nothing drains Broadcast.
	published := 0
	start := time.Now()
	for {
		err := h.PublishTransferCompleted(context.Background(), event)
		if errors.Is(err, ErrHubBusy) {
			break
		}
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		published++
		if published > cap(h.Broadcast) {
			t.Fatal("hub never reported it was full")
		}
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("publishing to a full hub took %v", elapsed)
	}
	if published != cap(h.Broadcast)/2 {
		t.Errorf("published %d events before the hub filled, want %d", published, cap(h.Broadcast)/2)
	}
}
