package models

import "github.com/shopspring/decimal"

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

type TransactionStatus string

const (
	StatusCompleted       TransactionStatus = "completed"
	StatusPendingApproval TransactionStatus = "pending_approval"
)

type TransferType string

const (
	TransferInternal TransferType = "internal"
	TransferExternal TransferType = "external"
)

// Transaction is a ledger line. Amount is signed: debits are negative.
// Only Status may change after creation, and only pending_approval -> completed.
type Transaction struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Description  string            `json:"description"`
	Amount       decimal.Decimal   `json:"amount"`
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	FromAccount  string            `json:"fromAccount,omitempty"`
	ToAccount    string            `json:"toAccount,omitempty"`
	TransferType TransferType      `json:"transferType,omitempty"`
}
