package models

import (
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type StatementResponse struct {
	AccountID    int64                 `json:"accountId"`
	From         string                `json:"from,omitempty"`
	To           string                `json:"to,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
}

func NewStatementResponse(accountID int64, from, to time.Time, txs []domain.Transaction) StatementResponse {
	out := StatementResponse{
		AccountID:    accountID,
		Transactions: make([]TransactionResponse, 0, len(txs)),
	}
	if !from.IsZero() {
		out.From = from.UTC().Format(timeLayout)
	}
	if !to.IsZero() {
		out.To = to.UTC().Format(timeLayout)
	}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, NewTransactionResponse(tx))
	}
	return out
}

type ReconciliationResponse struct {
	AccountID        int64  `json:"accountId"`
	Balance          string `json:"balance"`
	LedgerSum        string `json:"ledgerSum"`
	TransactionCount int    `json:"transactionCount"`
	Consistent       bool   `json:"consistent"`
	Repaired         bool   `json:"repaired"`
}

func NewReconciliationResponse(report domain.ReconcileReport) ReconciliationResponse {
	return ReconciliationResponse{
		AccountID:        report.AccountID,
		Balance:          report.Balance.StringFixed(2),
		LedgerSum:        report.LedgerSum.StringFixed(2),
		TransactionCount: report.TransactionCount,
		Consistent:       report.Consistent,
		Repaired:         report.Repaired,
	}
}
