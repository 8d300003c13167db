package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
)

type LedgerController struct {
	postings       service_interfaces.PostingService
	transfers      service_interfaces.TransferService
	statements     service_interfaces.StatementService
	reconciliation service_interfaces.ReconciliationService
}

func NewLedgerController(
	postings service_interfaces.PostingService,
	transfers service_interfaces.TransferService,
	statements service_interfaces.StatementService,
	reconciliation service_interfaces.ReconciliationService,
) *LedgerController {
	return &LedgerController{
		postings:       postings,
		transfers:      transfers,
		statements:     statements,
		reconciliation: reconciliation,
	}
}

func (c *LedgerController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	register(mux, "POST /accounts/{id}/postings", c.post, authMiddleware)
	register(mux, "POST /transfers", c.transfer, authMiddleware)
	register(mux, "GET /accounts/{id}/statement", c.statement, authMiddleware)
	register(mux, "GET /accounts/{id}/reconciliation", c.reconcile, authMiddleware)
	register(mux, "POST /accounts/{id}/reconciliation", c.rebuild, authMiddleware)
}

func (c *LedgerController) post(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathAccountID(r)
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.PostingResponse]("validation failed", err.Error()), start)
		return
	}

	var req models.PostingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.PostingResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.PostingResponse]("validation failed", err.Error()), start)
		return
	}

	result, err := c.postings.Post(r.Context(), id, req.ParsedKind(), req.ParsedAmount(), req.Description)
	if err != nil {
		writeFailure[models.PostingResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusCreated, commons.SuccessResponse("posting applied", models.NewPostingResponse(result)), start)
}

func (c *LedgerController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	var req models.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), start)
		return
	}

	result, err := c.transfers.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.ParsedAmount())
	if err != nil {
		writeFailure[models.TransferResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("transfer completed", models.NewTransferResponse(req, result)), start)
}

func (c *LedgerController) statement(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathAccountID(r)
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.StatementResponse]("validation failed", err.Error()), start)
		return
	}

	from, err := queryTime(r, "from")
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.StatementResponse]("validation failed", err.Error()), start)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.StatementResponse]("validation failed", err.Error()), start)
		return
	}

	txs, err := c.statements.Statement(r.Context(), id, from, to)
	if err != nil {
		writeFailure[models.StatementResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("statement retrieved", models.NewStatementResponse(id, from, to, txs)), start)
}

func (c *LedgerController) reconcile(w http.ResponseWriter, r *http.Request) {
	c.runReconciliation(w, r, c.reconciliation.Reconcile)
}

// rebuild rewrites the cached balance from the transaction log.
func (c *LedgerController) rebuild(w http.ResponseWriter, r *http.Request) {
	c.runReconciliation(w, r, c.reconciliation.RebuildBalance)
}

func (c *LedgerController) runReconciliation(w http.ResponseWriter, r *http.Request, run func(context.Context, int64) (domain.ReconcileReport, error)) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathAccountID(r)
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.ReconciliationResponse]("validation failed", err.Error()), start)
		return
	}

	report, err := run(r.Context(), id)
	if err != nil {
		writeFailure[models.ReconciliationResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("reconciliation completed", models.NewReconciliationResponse(report)), start)
}
