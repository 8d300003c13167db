package models

import (
	"errors"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type PostingRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Validate checks shape only. Amount sign and scale are enforced by the
// ledger so HTTP and library callers get the same INVALID_AMOUNT error.
func (r PostingRequest) Validate() error {
	var errs []string

	kind := domain.TransactionKind(strings.ToUpper(strings.TrimSpace(r.Kind)))
	if kind == "" {
		errs = append(errs, "kind is required")
	} else if !kind.Valid() {
		errs = append(errs, "kind must be one of CREDIT, DEBIT")
	}

	if _, err := parseAmount(r.Amount); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r PostingRequest) ParsedKind() domain.TransactionKind {
	return domain.TransactionKind(strings.ToUpper(strings.TrimSpace(r.Kind)))
}

func (r PostingRequest) ParsedAmount() decimal.Decimal {
	amount, _ := parseAmount(r.Amount)
	return amount
}

type PostingResponse struct {
	TransactionID int64               `json:"transactionId"`
	Balance       string              `json:"balance"`
	Transaction   TransactionResponse `json:"transaction"`
}

func NewPostingResponse(result domain.PostingResult) PostingResponse {
	return PostingResponse{
		TransactionID: result.TransactionID,
		Balance:       result.NewBalance.StringFixed(2),
		Transaction:   NewTransactionResponse(result.Transaction),
	}
}

type TransactionResponse struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"accountId"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

func NewTransactionResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		AccountID:   tx.AccountID,
		Kind:        string(tx.Kind),
		Amount:      tx.Amount.StringFixed(2),
		Timestamp:   tx.Timestamp.UTC().Format(timeLayout),
		Description: tx.Description,
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, errors.New("amount is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, errors.New("amount must be numeric")
	}
	return amount, nil
}
