package models

import (
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestOpenAccountRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     OpenAccountRequest
		wantErr string
	}{
		{name: "valid", req: OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: "savings"}},
		{name: "valid with open date", req: OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: "CURRENT", OpenDate: "2024-01-02T03:04:05Z"}},
		{name: "missing ids", req: OpenAccountRequest{Type: "SAVINGS"}, wantErr: "customerId must be greater than zero; branchId must be greater than zero"},
		{name: "missing type", req: OpenAccountRequest{CustomerID: 1, BranchID: 2}, wantErr: "type is required"},
		{name: "unknown type", req: OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: "LOAN"}, wantErr: "type must be one of SAVINGS, CURRENT"},
		{name: "bad open date", req: OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: "SAVINGS", OpenDate: "02/01/2024"}, wantErr: "openDate must be an RFC3339 timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestOpenAccountRequestToDomain(t *testing.T) {
	account := OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: " current ", OpenDate: "2024-01-02T03:04:05+01:00"}.ToDomain()

	assert.Equal(t, domain.AccountTypeCurrent, account.Type)
	assert.True(t, account.OpenDate.Equal(time.Date(2024, 1, 2, 2, 4, 5, 0, time.UTC)))

	assert.True(t, OpenAccountRequest{CustomerID: 1, BranchID: 2, Type: "SAVINGS"}.ToDomain().OpenDate.IsZero())
}

func TestPostingRequestValidate(t *testing.T) {
	assert.NoError(t, PostingRequest{Kind: "debit", Amount: "10.50"}.Validate())
	assert.EqualError(t, PostingRequest{}.Validate(), "kind is required; amount is required")
	assert.EqualError(t, PostingRequest{Kind: "HOLD", Amount: "ten"}.Validate(), "kind must be one of CREDIT, DEBIT; amount must be numeric")

	req := PostingRequest{Kind: " credit ", Amount: " 12.30 "}
	assert.Equal(t, domain.TransactionCredit, req.ParsedKind())
	assert.Equal(t, "12.30", req.ParsedAmount().StringFixed(2))
}

func TestTransferRequestValidate(t *testing.T) {
	assert.NoError(t, TransferRequest{FromAccountID: 1, ToAccountID: 2, Amount: "1"}.Validate())
	assert.EqualError(t, TransferRequest{Amount: "x"}.Validate(), "fromAccountId must be greater than zero; toAccountId must be greater than zero; amount must be numeric")
}

func TestUpdateAccountStatusRequestValidate(t *testing.T) {
	assert.NoError(t, UpdateAccountStatusRequest{Status: "frozen"}.Validate())
	assert.EqualError(t, UpdateAccountStatusRequest{}.Validate(), "status is required")
	assert.EqualError(t, UpdateAccountStatusRequest{Status: "DORMANT"}.Validate(), "status must be one of ACTIVE, FROZEN, CLOSED")
}

func TestNewStatementResponseOmitsOpenBounds(t *testing.T) {
	resp := NewStatementResponse(7, time.Time{}, time.Time{}, nil)

	assert.Equal(t, int64(7), resp.AccountID)
	assert.Empty(t, resp.From)
	assert.Empty(t, resp.To)
	assert.NotNil(t, resp.Transactions)
}
