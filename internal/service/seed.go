package service

import (
	"github.com/shopspring/decimal"

	"securebank/internal/models"
)

// seedAccounts and seedTransactions are written to storage on first run.
func seedAccounts() []models.Account {
	return []models.Account{
		{ID: "ACC001", Type: "Checking", Balance: decimal.RequireFromString("15430.50"), AccountNumber: "****1234", Currency: "USD"},
		{ID: "ACC002", Type: "Savings", Balance: decimal.RequireFromString("45820.75"), AccountNumber: "****5678", Currency: "USD"},
		{ID: "ACC003", Type: "Investment", Balance: decimal.RequireFromString("128500.00"), AccountNumber: "****9012", Currency: "USD"},
	}
}

func seedTransactions() []models.Transaction {
	completed := func(id, date, desc, amount string, t models.TransactionType) models.Transaction {
		return models.Transaction{
			ID:          id,
			Date:        date,
			Description: desc,
			Amount:      decimal.RequireFromString(amount),
			Type:        t,
			Status:      models.StatusCompleted,
		}
	}
	return []models.Transaction{
		completed("TXN001", "2024-12-19", "Salary Deposit", "5000.00", models.TransactionCredit),
		completed("TXN002", "2024-12-18", "Grocery Store", "-145.32", models.TransactionDebit),
		completed("TXN003", "2024-12-17", "Electric Bill", "-89.50", models.TransactionDebit),
		completed("TXN004", "2024-12-16", "Transfer to Savings", "-1000.00", models.TransactionDebit),
		completed("TXN005", "2024-12-15", "Online Purchase", "-234.99", models.TransactionDebit),
	}
}
