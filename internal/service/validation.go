package service

import (
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"securebank/internal/models"
)

var (
	amountPattern      = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	descriptionPattern = regexp.MustCompile(`^[a-zA-Z0-9 ,.-]{0,100}$`)
	billTypePattern    = regexp.MustCompile(`^[a-zA-Z0-9 ,.-]{1,40}$`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const minPasswordLength = 12

// TransferRequest is a transfer as submitted by the user. Amount is kept as
// text so the exact format can be validated.
type TransferRequest struct {
	FromAccount string              `json:"fromAccount"`
	ToAccount   string              `json:"toAccount"`
	Amount      string              `json:"amount"`
	Type        models.TransferType `json:"type"`
	Description string              `json:"description"`
}

type BillPaymentRequest struct {
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Beneficiary   string `json:"beneficiary"`
	AccountNumber string `json:"accountNumber"`
}

// parseAmount returns the amount and an empty message, or a user-facing
// message describing why raw is not a valid positive amount.
func parseAmount(raw string) (decimal.Decimal, string) {
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, "Invalid amount format"
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "Invalid amount format"
	}
	if !amount.IsPositive() {
		return decimal.Zero, "Amount must be greater than 0"
	}
	return amount, ""
}

// ValidateTransfer checks req against accounts and returns the parsed amount.
// All problems are reported together in a *ValidationError.
func ValidateTransfer(req TransferRequest, accounts []models.Account) (decimal.Decimal, error) {
	fields := make(map[string]string)

	amount, msg := parseAmount(req.Amount)
	if msg != "" {
		fields["amount"] = msg
	}

	switch {
	case req.FromAccount == "":
		fields["fromAccount"] = "Please select source account"
	case findAccount(accounts, req.FromAccount) < 0:
		fields["fromAccount"] = "Source account not found"
	}

	transferType := req.Type
	if transferType == "" {
		transferType = models.TransferInternal
	}

	switch {
	case req.ToAccount == "":
		fields["toAccount"] = "Please select destination account"
	case transferType == models.TransferInternal && findAccount(accounts, req.ToAccount) < 0:
		fields["toAccount"] = "Destination account not found"
	case transferType == models.TransferInternal && req.ToAccount == req.FromAccount:
		fields["toAccount"] = "Destination must differ from source account"
	}

	if transferType != models.TransferInternal && transferType != models.TransferExternal {
		fields["type"] = "Transfer type must be internal or external"
	}

	if req.Description != "" && !descriptionPattern.MatchString(req.Description) {
		fields["description"] = "Description contains invalid characters"
	}

	if len(fields) > 0 {
		return decimal.Zero, &ValidationError{Fields: fields}
	}
	return amount, nil
}

func ValidateBillPayment(req BillPaymentRequest) (decimal.Decimal, error) {
	fields := make(map[string]string)

	amount, msg := parseAmount(req.Amount)
	if msg != "" {
		fields["amount"] = msg
	}
	if req.Type != "" && !billTypePattern.MatchString(req.Type) {
		fields["type"] = "Bill type contains invalid characters"
	}

	if len(fields) > 0 {
		return decimal.Zero, &ValidationError{Fields: fields}
	}
	return amount, nil
}

// ValidatePasswordStrength requires at least 12 characters mixing upper and
// lower case letters, digits and special characters.
func ValidatePasswordStrength(pwd string) bool {
	return utf8.RuneCountInString(pwd) >= minPasswordLength &&
		upperPattern.MatchString(pwd) &&
		lowerPattern.MatchString(pwd) &&
		digitPattern.MatchString(pwd) &&
		specialPattern.MatchString(pwd)
}

func findAccount(accounts []models.Account, id string) int {
	for i := range accounts {
		if accounts[i].ID == id {
			return i
		}
	}
	return -1
}
