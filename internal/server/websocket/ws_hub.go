package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/pkg/currency"
)

const (
	TypeTransferSent     = "transfer.sent"
	TypeTransferReceived = "transfer.received"
)

// ErrHubBusy is returned when the broadcast queue is full, typically
// because Run is not draining it.
var ErrHubBusy = errors.New("websocket hub is not accepting messages")

// WsHub fans transfer notifications out to every open connection of the
// accounts involved.
type WsHub struct {
	mu        sync.RWMutex
	Clients   map[string]map[*Client]struct{}
	Broadcast chan Envelope
	Logger    zerolog.Logger
}

// Envelope addresses a message to one account.
type Envelope struct {
	AccountID string
	Message   Message
}

type Message struct {
	Type     string          `json:"type"`
	Transfer *TransferNotice `json:"transfer,omitempty"`
	Balance  *domain.Balance `json:"balance,omitempty"`
}

type TransferNotice struct {
	Reference        string  `json:"reference"`
	TransactionID    string  `json:"transactionId,omitempty"`
	CounterpartyID   string  `json:"counterpartyId"`
	CounterpartyName string  `json:"counterpartyName"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Description      string  `json:"description,omitempty"`
	Date             string  `json:"date"`
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	return &WsHub{
		Clients:   make(map[string]map[*Client]struct{}),
		Broadcast: make(chan Envelope, 100),
		Logger:    logger,
	}
}

// Run delivers queued envelopes until ctx is cancelled.
func (h *WsHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case env := <-h.Broadcast:
			h.deliver(env)
		}
	}
}

func (h *WsHub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Clients[client.AccountID] == nil {
		h.Clients[client.AccountID] = make(map[*Client]struct{})
	}
	h.Clients[client.AccountID][client] = struct{}{}
	h.Logger.Info().
		Str("account_id", client.AccountID).
		Int("connection_count", len(h.Clients[client.AccountID])).
		Msg("WebSocket client registered")
}

func (h *WsHub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.Clients[client.AccountID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.Clients, client.AccountID)
	}
	h.Logger.Info().
		Str("account_id", client.AccountID).
		Int("connection_count", len(clients)).
		Msg("WebSocket client unregistered")
}

func (h *WsHub) ConnectionCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Clients[accountID])
}

func (h *WsHub) deliver(env Envelope) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.Clients[env.AccountID]))
	for c := range h.Clients[env.AccountID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		h.Logger.Debug().Str("account_id", env.AccountID).Str("type", env.Message.Type).Msg("No clients connected")
		return
	}
	for _, c := range clients {
		if err := c.Send(env.Message); err != nil {
			h.Logger.Warn().Err(err).
				Str("account_id", env.AccountID).
				Str("type", env.Message.Type).
				Msg("Failed to queue WebSocket message")
		}
	}
}

func (h *WsHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for accountID, clients := range h.Clients {
		for c := range clients {
			c.Close()
		}
		delete(h.Clients, accountID)
	}
}

// PublishTransferCompleted notifies the sender and the recipient.
func (h *WsHub) PublishTransferCompleted(ctx context.Context, event *domain.TransferCompleted) error {
	date := event.OccurredAt.UTC().Format(time.RFC3339)
	envelopes := []Envelope{
		{
			AccountID: event.SenderID,
			Message: Message{
				Type: TypeTransferSent,
				Transfer: &TransferNotice{
					Reference:        event.Reference,
					TransactionID:    event.TransactionID,
					CounterpartyID:   event.RecipientID,
					CounterpartyName: event.RecipientName,
					Amount:           currency.ToMajorFloat(event.Amount),
					Currency:         event.Currency,
					Description:      event.Description,
					Date:             date,
				},
				Balance: balanceOf(event.SenderID, event.Currency, event.SenderBalance, event.OccurredAt),
			},
		},
		{
			AccountID: event.RecipientID,
			Message: Message{
				Type: TypeTransferReceived,
				Transfer: &TransferNotice{
					Reference:        event.Reference,
					CounterpartyID:   event.SenderID,
					CounterpartyName: event.SenderName,
					Amount:           currency.ToMajorFloat(event.Amount),
					Currency:         event.Currency,
					Description:      event.Description,
					Date:             date,
				},
				Balance: balanceOf(event.RecipientID, event.Currency, event.RecipientBalance, event.OccurredAt),
			},
		},
	}

	for _, env := range envelopes {
		select {
		case h.Broadcast <- env:
		default:
			return ErrHubBusy
		}
	}
	return nil
}

func balanceOf(accountID, code string, minor int64, at time.Time) *domain.Balance {
	return &domain.Balance{
		AccountID:   accountID,
		Currency:    code,
		AmountMinor: minor,
		Amount:      currency.ToMajorFloat(minor),
		UpdatedAt:   at,
	}
}
