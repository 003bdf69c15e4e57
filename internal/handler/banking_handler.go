package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"securebank/internal/service"
	"securebank/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BankingHandler serves accounts, transactions, transfers and bill payments.
// Every route requires a session.
type BankingHandler struct {
	responder
	ledger *service.LedgerService
}

func NewBankingHandler(ledger *service.LedgerService, logger *zap.Logger) *BankingHandler {
	return &BankingHandler{
		responder: responder{logger: logger},
		ledger:    ledger,
	}
}

func (h *BankingHandler) RegisterRoutes(router chi.Router) {
	router.Get("/accounts", h.GetAccounts)

	router.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.GetTransactions)
		r.Get("/export", h.ExportTransactions)
	})

	router.Route("/transfers", func(r chi.Router) {
		r.Post("/", h.CreateTransfer)
		r.Post("/{transactionID}/approve", h.ApproveTransfer)
	})

	router.Post("/bills", h.PayBill)
}

func (h *BankingHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.Accounts(r.Context())
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get accounts")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(accounts, ""))
}

// GetTransactions handles ?filter=all|credit|debit&search=text
func (h *BankingHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	filter, search := transactionQuery(r)

	txns, err := h.ledger.FilterTransactions(r.Context(), filter, search)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to get transactions")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(txns, ""))
}

// ExportTransactions streams the statement as a text attachment.
func (h *BankingHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	filter, search := transactionQuery(r)

	stmt, err := h.ledger.ExportStatement(r.Context(), filter, search)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stmt.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(stmt.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(stmt.Content)); err != nil {
		h.logger.Warn("Failed to write statement", util.ErrorField(err))
	}
}

func (h *BankingHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req service.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.ledger.Transfer(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err, "Transfer failed")
		return
	}

	if result.Decision.RequiresApproval {
		h.respondWithJSON(w, http.StatusAccepted, successResponse(result, "Transfer pending approval"))
	} else {
		h.respondWithJSON(w, http.StatusCreated, successResponse(result, "Transfer completed successfully!"))
	}
	h.logger.Info("Transfer submitted via HTTP",
		util.String("transaction_id", result.Transaction.ID),
		util.String("status", string(result.Transaction.Status)),
		util.Duration("duration", time.Since(startTime)),
	)
}

func (h *BankingHandler) ApproveTransfer(w http.ResponseWriter, r *http.Request) {
	txnID := chi.URLParam(r, "transactionID")

	txn, err := h.ledger.ApproveTransfer(r.Context(), txnID)
	if err != nil {
		h.respondWithServiceError(w, err, "Failed to approve transfer")
		return
	}
	h.respondWithJSON(w, http.StatusOK, successResponse(txn, "Transfer approved and processed"))
}

func (h *BankingHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req service.BillPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	txn, err := h.ledger.PayBill(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err, "Bill payment failed")
		return
	}
	h.respondWithJSON(w, http.StatusCreated, successResponse(txn, "Bill payment successful!"))
}

func transactionQuery(r *http.Request) (service.TransactionFilter, string) {
	q := r.URL.Query()
	filter := service.TransactionFilter(q.Get("filter"))
	if filter == "" {
		filter = service.FilterAll
	}
	return filter, q.Get("search")
}
