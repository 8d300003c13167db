package models

import (
	"errors"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	FromAccountID int64  `json:"fromAccountId"`
	ToAccountID   int64  `json:"toAccountId"`
	Amount        string `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if r.FromAccountID <= 0 {
		errs = append(errs, "fromAccountId must be greater than zero")
	}
	if r.ToAccountID <= 0 {
		errs = append(errs, "toAccountId must be greater than zero")
	}
	if _, err := parseAmount(r.Amount); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r TransferRequest) ParsedAmount() decimal.Decimal {
	amount, _ := parseAmount(r.Amount)
	return amount
}

type TransferResponse struct {
	FromAccountID       int64  `json:"fromAccountId"`
	ToAccountID         int64  `json:"toAccountId"`
	Amount              string `json:"amount"`
	DebitTransactionID  int64  `json:"debitTransactionId"`
	CreditTransactionID int64  `json:"creditTransactionId"`
	FromBalance         string `json:"fromBalance"`
	ToBalance           string `json:"toBalance"`
}

func NewTransferResponse(req TransferRequest, result domain.TransferResult) TransferResponse {
	return TransferResponse{
		FromAccountID:       req.FromAccountID,
		ToAccountID:         req.ToAccountID,
		Amount:              req.ParsedAmount().StringFixed(2),
		DebitTransactionID:  result.DebitTransactionID,
		CreditTransactionID: result.CreditTransactionID,
		FromBalance:         result.FromBalance.StringFixed(2),
		ToBalance:           result.ToBalance.StringFixed(2),
	}
}
