package models

import "github.com/shopspring/decimal"

type Account struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	AccountNumber string          `json:"accountNumber"`
	Currency      string          `json:"currency"`
}
