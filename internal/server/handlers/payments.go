package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Khin-96/pochi-sub000/internal/application/transfer"
	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/server/middleware"
	"github.com/Khin-96/pochi-sub000/pkg/currency"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

type PaymentsHandler struct {
	transferSvc transfer.ITransferService
	logger      zerolog.Logger
}

func NewPaymentsHandler(transferSvc transfer.ITransferService, logger zerolog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		transferSvc: transferSvc,
		logger:      logger,
	}
}

type verifyRecipientRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=phone email"`
}

var verifyRecipientFields = map[string]string{
	"Identifier": "identifier",
	"Type":       "type",
}

type sendRequest struct {
	RecipientType  string           `json:"recipientType" binding:"required"`
	RecipientPhone string           `json:"recipientPhone"`
	RecipientEmail string           `json:"recipientEmail"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Description    string           `json:"description"`
}

var sendFields = map[string]string{
	"RecipientType": "recipientType",
	"Amount":        "amount",
}

type transactionView struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Description      string  `json:"description"`
	Counterparty     string  `json:"counterparty"`
	CounterpartyName string  `json:"counterpartyName"`
	Status           string  `json:"status"`
	Reference        string  `json:"reference"`
	Date             string  `json:"date"`
}

func toView(rec *domain.TransactionRecord) transactionView {
	return transactionView{
		ID:               rec.ID,
		Type:             string(rec.Type),
		Amount:           currency.ToMajorFloat(rec.Amount),
		Currency:         rec.Currency,
		Description:      rec.Description,
		Counterparty:     rec.Counterparty,
		CounterpartyName: rec.CounterpartyName,
		Status:           string(rec.Status),
		Reference:        rec.Reference,
		Date:             rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *PaymentsHandler) VerifyRecipient(c *gin.Context) {
	var req verifyRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err, verifyRecipientFields))
		return
	}

	kind, _ := identifier.ParseKind(req.Type)
	view, err := h.transferSvc.VerifyRecipient(c.Request.Context(), identifier.Identifier{Kind: kind, Raw: req.Identifier})
	if err != nil {
		if domain.CodeOf(err) == domain.CodeRecipientNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"verified": false,
				"error":    domain.ErrRecipientNotFound.Message,
				"code":     domain.CodeRecipientNotFound,
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified":   true,
		"name":       view.Name,
		"type":       view.Type,
		"identifier": view.Identifier,
	})
}

func (h *PaymentsHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err, sendFields))
		return
	}

	res, err := h.transferSvc.Send(c.Request.Context(), middleware.AccountID(c), transfer.SendRequest{
		RecipientType:  req.RecipientType,
		RecipientPhone: req.RecipientPhone,
		RecipientEmail: req.RecipientEmail,
		Amount:         *req.Amount,
		Description:    req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Successfully sent " + currency.Format(res.Transaction.Currency, res.Transaction.Amount) + " to " + res.RecipientName,
		"transaction": toView(res.Transaction),
		"balance":     currency.ToMajorFloat(res.Balance),
	})
}

type frequentRecipientView struct {
	Identifier  string  `json:"identifier"`
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
}

func (h *PaymentsHandler) FrequentRecipients(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}

	recipients, err := h.transferSvc.FrequentRecipients(c.Request.Context(), middleware.AccountID(c), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]frequentRecipientView, len(recipients))
	for i, r := range recipients {
		views[i] = frequentRecipientView{
			Identifier:  r.Identifier,
			Name:        r.Name,
			Count:       r.Count,
			TotalAmount: currency.ToMajorFloat(r.TotalAmount),
		}
	}
	c.JSON(http.StatusOK, gin.H{"recipients": views})
}

func (h *PaymentsHandler) Transactions(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := h.queryInt(c, "offset", 0)
	if !ok {
		return
	}

	history, err := h.transferSvc.History(c.Request.Context(), middleware.AccountID(c), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]transactionView, len(history.Transactions))
	for i := range history.Transactions {
		views[i] = toView(&history.Transactions[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": views,
		"total":        history.Total,
		"limit":        history.Limit,
		"offset":       history.Offset,
	})
}

func (h *PaymentsHandler) Balance(c *gin.Context) {
	balance, err := h.transferSvc.Balance(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":  balance.Amount,
		"currency": balance.Currency,
	})
}

func (h *PaymentsHandler) queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, h.logger, domain.NewValidationError(map[string]string{name: "must be an integer"}))
		return 0, false
	}
	return v, true
}
