package service

import (
	"errors"
	"strings"
	"testing"

	"securebank/internal/models"
)

func TestValidateTransferCollectsAllFields(t *testing.T) {
	_, err := ValidateTransfer(TransferRequest{Amount: "abc", Description: "drop table;"}, seedAccounts())

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"amount", "fromAccount", "toAccount", "description"} {
		if verr.Fields[field] == "" {
			t.Fatalf("expected %s to be reported, got %v", field, verr.Fields)
		}
	}
	if err.Error() != "Please fix validation errors" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidateTransferAccepts(t *testing.T) {
	cases := []TransferRequest{
		{FromAccount: "ACC001", ToAccount: "ACC002", Amount: "1"},
		{FromAccount: "ACC001", ToAccount: "ACC003", Amount: "0.5", Description: "Move, to investments."},
		{FromAccount: "ACC002", ToAccount: "EXT-991", Amount: "12.30", Type: models.TransferExternal},
		{FromAccount: "ACC001", ToAccount: "ACC002", Amount: "10", Description: strings.Repeat("a", 100)},
	}
	for _, req := range cases {
		amount, err := ValidateTransfer(req, seedAccounts())
		if err != nil {
			t.Fatalf("%+v: unexpected error %v", req, err)
		}
		if !amount.Equal(dec(req.Amount)) {
			t.Fatalf("%+v: parsed %s", req, amount)
		}
	}
}

func TestValidateRejectsLineBreaks(t *testing.T) {
	for _, desc := range []string{"rent\nTOTAL $0.00", "rent\r", "rent\tdue"} {
		_, err := ValidateTransfer(TransferRequest{FromAccount: "ACC001", ToAccount: "ACC002", Amount: "1", Description: desc}, seedAccounts())
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Fields["description"] == "" {
			t.Fatalf("%q: expected description rejected, got %v", desc, err)
		}
	}

	_, err := ValidateBillPayment(BillPaymentRequest{Amount: "10", Type: "water\r\n"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["type"] == "" {
		t.Fatalf("expected bill type rejected, got %v", err)
	}
}

func TestValidateBillPayment(t *testing.T) {
	if _, err := ValidateBillPayment(BillPaymentRequest{Amount: "10.00", Type: "internet"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	_, err := ValidateBillPayment(BillPaymentRequest{Amount: "10", Type: "<b>"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["type"] == "" {
		t.Fatalf("expected type rejected, got %v", err)
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"SecureBank123!": true,
		"Short1!a":       false,
		"alllowercase1!": false,
		"ALLUPPERCASE1!": false,
		"NoDigitsHere!!": false,
		"NoSpecials1234": false,
		"Tr0ub4dor&3xyz": true,
	}
	for pwd, want := range cases {
		if got := ValidatePasswordStrength(pwd); got != want {
			t.Fatalf("%q: expected %v, got %v", pwd, want, got)
		}
	}
}
