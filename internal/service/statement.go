package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"securebank/internal/models"
	"securebank/internal/util"
)

const statementRuleWidth = 95

// Statement is a plain-text transaction report ready to be downloaded.
type Statement struct {
	FileName string
	Content  string
	Count    int
}

// ExportStatement renders the transactions matching filter and search.
func (l *LedgerService) ExportStatement(ctx context.Context, filter TransactionFilter, search string) (*Statement, error) {
	user, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	txns, err := filterTransactions(l.transactions, filter, search)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	stmt := &Statement{
		FileName: fmt.Sprintf("SecureBank_Transactions_%s.txt", now.UTC().Format("2006-01-02")),
		Content:  renderStatement(txns, user.DisplayName, now.Format("2006-01-02 15:04:05 MST")),
		Count:    len(txns),
	}

	l.alerts.Show(models.AlertSuccess, "Transaction statement exported successfully!")
	return stmt, nil
}

func renderStatement(txns []models.Transaction, holder, generated string) string {
	var b strings.Builder
	rule := strings.Repeat("=", statementRuleWidth)

	b.WriteString("SECUREBANK PRO - TRANSACTION STATEMENT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated)
	fmt.Fprintf(&b, "Account Holder: %s\n", holder)
	fmt.Fprintf(&b, "Total Transactions: %d\n\n", len(txns))

	fmt.Fprintf(&b, "%-15s%-40s%-10s%-15s%-15s\n", "DATE", "DESCRIPTION", "TYPE", "AMOUNT", "STATUS")
	b.WriteString(rule + "\n")

	debits, credits := decimal.Zero, decimal.Zero
	for _, txn := range txns {
		fmt.Fprintf(&b, "%-15s%-40s%-10s%-15s%-15s\n",
			txn.Date,
			util.Truncate(singleLine(txn.Description), 38),
			txn.Type,
			"$"+txn.Amount.Abs().StringFixed(2),
			txn.Status,
		)
		switch txn.Type {
		case models.TransactionDebit:
			debits = debits.Add(txn.Amount.Abs())
		case models.TransactionCredit:
			credits = credits.Add(txn.Amount)
		}
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Total Debits: $%s\n", debits.StringFixed(2))
	fmt.Fprintf(&b, "Total Credits: $%s\n", credits.StringFixed(2))
	return b.String()
}

// singleLine keeps a statement row on one line.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
