package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	register(mux, "POST /accounts", c.openAccount, authMiddleware)
	register(mux, "GET /accounts/{id}", c.getAccount, authMiddleware)
	register(mux, "POST /accounts/{id}/status", c.updateStatus, authMiddleware)
}

func (c *AccountController) openAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	var req models.OpenAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), start)
		return
	}

	account, err := c.service.OpenAccount(r.Context(), req.ToDomain())
	if err != nil {
		writeFailure[models.AccountResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusCreated, commons.SuccessResponse("account opened", models.NewAccountResponse(account)), start)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathAccountID(r)
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), start)
		return
	}

	account, err := c.service.GetAccount(r.Context(), id)
	if err != nil {
		writeFailure[models.AccountResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("account retrieved", models.NewAccountResponse(account)), start)
}

func (c *AccountController) updateStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := pathAccountID(r)
	if err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), start)
		return
	}

	var req models.UpdateAccountStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), start)
		return
	}

	if err := c.service.UpdateStatus(r.Context(), id, domain.AccountStatus(req.Status)); err != nil {
		writeFailure[models.AccountResponse](w, r, err, start)
		return
	}

	account, err := c.service.GetAccount(r.Context(), id)
	if err != nil {
		writeFailure[models.AccountResponse](w, r, err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("account status updated", models.NewAccountResponse(account)), start)
}

func register(mux *http.ServeMux, pattern string, handler http.HandlerFunc, authMiddleware func(http.Handler) http.Handler) {
	var h http.Handler = handler
	if authMiddleware != nil {
		h = authMiddleware(h)
	}
	mux.Handle(pattern, h)
}
