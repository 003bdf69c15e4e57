package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"securebank/internal/audit"
	"securebank/internal/clock"
	"securebank/internal/metrics"
	"securebank/internal/models"
	"securebank/internal/repository"
	"securebank/internal/util"
)

const (
	accountsKey     = "accounts"
	transactionsKey = "transactions"

	approvalPendingMessage = "This transaction requires administrative approval and will be processed within 24 hours. You will be notified once approved. Your balance will be deducted after approval."
)

// SessionAuthority reports the signed-in user. Every ledger operation
// requires one.
type SessionAuthority interface {
	CurrentUser() (models.User, error)
}

type TransactionFilter string

const (
	FilterAll    TransactionFilter = "all"
	FilterCredit TransactionFilter = "credit"
	FilterDebit  TransactionFilter = "debit"
)

type TransferResult struct {
	Transaction models.Transaction `json:"transaction"`
	Decision    LimitDecision      `json:"decision"`
}

// LedgerService owns the account balances and transaction history. State is
// loaded from storage once and written back after every mutation; a failed
// write leaves the in-memory state unchanged.
type LedgerService struct {
	mu          sync.Mutex
	store       repository.Store
	auth        SessionAuthority
	clock       clock.Clock
	securityLog *audit.SecurityLog
	alerts      *AlertCenter
	logger      *zap.Logger

	loaded        bool
	accounts      []models.Account
	transactions  []models.Transaction
	lastTxnMillis int64
}

func NewLedgerService(
	store repository.Store,
	auth SessionAuthority,
	clk clock.Clock,
	securityLog *audit.SecurityLog,
	alerts *AlertCenter,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		store:       store,
		auth:        auth,
		clock:       clk,
		securityLog: securityLog,
		alerts:      alerts,
		logger:      logger,
	}
}

// Init loads accounts and transactions, seeding storage when a key is absent.
func (l *LedgerService) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *LedgerService) load(ctx context.Context) error {
	if l.loaded {
		return nil
	}

	accounts, err := loadOrSeed(ctx, l.store, accountsKey, seedAccounts)
	if err != nil {
		return err
	}
	transactions, err := loadOrSeed(ctx, l.store, transactionsKey, seedTransactions)
	if err != nil {
		return err
	}

	l.accounts = accounts
	l.transactions = transactions
	l.loaded = true

	l.logger.Info("Ledger loaded",
		util.Int("accounts", len(accounts)),
		util.Int("transactions", len(transactions)),
	)
	return nil
}

func loadOrSeed[T any](ctx context.Context, store repository.Store, key string, seed func() []T) ([]T, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		items := seed()
		if err := save(ctx, store, key, items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func save(ctx context.Context, store repository.Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// begin returns the signed-in user with the ledger locked and loaded. The
// caller must unlock l.mu when err is nil.
func (l *LedgerService) begin(ctx context.Context) (models.User, error) {
	user, err := l.auth.CurrentUser()
	if err != nil {
		return models.User{}, err
	}

	l.mu.Lock()
	if err := l.load(ctx); err != nil {
		l.mu.Unlock()
		return models.User{}, err
	}
	return user, nil
}

func (l *LedgerService) Accounts(ctx context.Context) ([]models.Account, error) {
	if _, err := l.begin(ctx); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	out := make([]models.Account, len(l.accounts))
	copy(out, l.accounts)
	return out, nil
}

// Transfer validates, authorizes and applies a transfer. Transfers above the
// approval threshold are recorded as pending and move no money.
func (l *LedgerService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	user, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	amount, err := ValidateTransfer(req, l.accounts)
	if err != nil {
		metrics.TransferDecisions.WithLabelValues("invalid").Inc()
		l.alerts.Show(models.AlertError, err.Error())
		return nil, err
	}
	if req.Type == "" {
		req.Type = models.TransferInternal
	}

	decision := CheckTransactionLimit(user.Role, amount)
	if !decision.Allowed {
		return nil, l.deny(decision.Message, ErrLimitExceeded)
	}

	now := l.clock.Now().UTC()
	txn := models.Transaction{
		ID:           l.nextTransactionID(now.UnixMilli()),
		Date:         now.Format("2006-01-02"),
		Description:  req.Description,
		Amount:       amount.Neg(),
		Type:         models.TransactionDebit,
		Status:       models.StatusCompleted,
		FromAccount:  req.FromAccount,
		ToAccount:    req.ToAccount,
		TransferType: req.Type,
	}
	if txn.Description == "" {
		txn.Description = fmt.Sprintf("Transfer to %s", req.ToAccount)
	}

	if decision.RequiresApproval {
		txn.Status = models.StatusPendingApproval
		transactions := prepend(txn, l.transactions)
		if err := save(ctx, l.store, transactionsKey, transactions); err != nil {
			return nil, err
		}
		l.transactions = transactions

		metrics.TransferDecisions.WithLabelValues("pending_approval").Inc()
		l.securityLog.Record(models.EventTransferApprovalRequired,
			fmt.Sprintf("High-value transfer: $%s - Pending approval", amount.String()), user.Username)
		l.alerts.Show(models.AlertWarning, approvalPendingMessage)
		return &TransferResult{Transaction: txn, Decision: decision}, nil
	}

	accounts, err := l.applyMovement(req.FromAccount, req.ToAccount, req.Type, amount)
	if err != nil {
		return nil, err
	}
	transactions := prepend(txn, l.transactions)
	if err := l.commit(ctx, accounts, transactions); err != nil {
		return nil, err
	}

	metrics.TransferDecisions.WithLabelValues("completed").Inc()
	l.securityLog.Record(models.EventTransferSuccess,
		fmt.Sprintf("Transfer of $%s from %s to %s", amount.String(), req.FromAccount, req.ToAccount), user.Username)
	l.alerts.Show(models.AlertSuccess, "Transfer completed successfully!")
	l.logger.Info("Transfer completed",
		util.String("transaction_id", txn.ID),
		util.String("from", req.FromAccount),
		util.String("to", req.ToAccount),
		util.String("amount", amount.String()),
	)
	return &TransferResult{Transaction: txn, Decision: decision}, nil
}

// PayBill debits the first account.
func (l *LedgerService) PayBill(ctx context.Context, req BillPaymentRequest) (*models.Transaction, error) {
	user, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	amount, err := ValidateBillPayment(req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && verr.Fields["amount"] != "" {
			l.alerts.Show(models.AlertError, verr.Fields["amount"])
		} else {
			l.alerts.Show(models.AlertError, err.Error())
		}
		return nil, err
	}
	if req.Type == "" {
		req.Type = "utility"
	}
	if len(l.accounts) == 0 {
		return nil, fmt.Errorf("no account to pay from: %w", ErrNotFound)
	}

	source := l.accounts[0].ID
	accounts, err := l.applyMovement(source, "", models.TransferExternal, amount)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now().UTC()
	txn := models.Transaction{
		ID:          l.nextTransactionID(now.UnixMilli()),
		Date:        now.Format("2006-01-02"),
		Description: fmt.Sprintf("Bill Payment - %s", req.Type),
		Amount:      amount.Neg(),
		Type:        models.TransactionDebit,
		Status:      models.StatusCompleted,
		FromAccount: source,
	}
	transactions := prepend(txn, l.transactions)
	if err := l.commit(ctx, accounts, transactions); err != nil {
		return nil, err
	}

	l.securityLog.Record(models.EventBillPayment,
		fmt.Sprintf("Bill payment of $%s for %s", amount.String(), req.Type), user.Username)
	l.alerts.Show(models.AlertSuccess, "Bill payment successful!")
	return &txn, nil
}

// ApproveTransfer completes a pending transfer. Only admins may approve, and
// the source balance is checked again at approval time.
func (l *LedgerService) ApproveTransfer(ctx context.Context, txnID string) (*models.Transaction, error) {
	user, err := l.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	if user.Role != models.RoleAdmin {
		l.alerts.Show(models.AlertError, "Only administrators can approve transfers")
		return nil, fmt.Errorf("approve %s: %w", txnID, ErrPermissionDenied)
	}

	idx := -1
	for i := range l.transactions {
		if l.transactions[i].ID == txnID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("transaction %s: %w", txnID, ErrNotFound)
	}
	txn := l.transactions[idx]
	if txn.Status != models.StatusPendingApproval {
		return nil, fmt.Errorf("transaction %s: %w", txnID, ErrNotPending)
	}

	amount := txn.Amount.Abs()
	accounts, err := l.applyMovement(txn.FromAccount, txn.ToAccount, txn.TransferType, amount)
	if err != nil {
		return nil, err
	}

	txn.Status = models.StatusCompleted
	transactions := make([]models.Transaction, len(l.transactions))
	copy(transactions, l.transactions)
	transactions[idx] = txn

	if err := l.commit(ctx, accounts, transactions); err != nil {
		return nil, err
	}

	metrics.TransferDecisions.WithLabelValues("approved").Inc()
	l.securityLog.Record(models.EventTransferApproved,
		fmt.Sprintf("Transfer %s of $%s approved", txn.ID, amount.String()), user.Username)
	l.alerts.Show(models.AlertSuccess, "Transfer approved and processed")
	return &txn, nil
}

// FilterTransactions returns transactions of the given direction whose
// description or id contains search, ignoring case.
func (l *LedgerService) FilterTransactions(ctx context.Context, filter TransactionFilter, search string) ([]models.Transaction, error) {
	if _, err := l.begin(ctx); err != nil {
		return nil, err
	}
	defer l.mu.Unlock()

	return filterTransactions(l.transactions, filter, search)
}

func filterTransactions(txns []models.Transaction, filter TransactionFilter, search string) ([]models.Transaction, error) {
	var want models.TransactionType
	switch filter {
	case "", FilterAll:
	case FilterCredit:
		want = models.TransactionCredit
	case FilterDebit:
		want = models.TransactionDebit
	default:
		return nil, &ValidationError{Fields: map[string]string{"filter": "Filter must be all, credit or debit"}}
	}

	needle := strings.ToLower(search)
	out := make([]models.Transaction, 0, len(txns))
	for _, txn := range txns {
		if want != "" && txn.Type != want {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(txn.Description), needle) &&
			!strings.Contains(strings.ToLower(txn.ID), needle) {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

// applyMovement returns a copy of the accounts with amount debited from
// source and, for internal transfers, credited to destination.
func (l *LedgerService) applyMovement(source, destination string, transferType models.TransferType, amount decimal.Decimal) ([]models.Account, error) {
	src := findAccount(l.accounts, source)
	if src < 0 {
		return nil, fmt.Errorf("account %s: %w", source, ErrNotFound)
	}
	if l.accounts[src].Balance.LessThan(amount) {
		return nil, l.deny("Insufficient funds", ErrInsufficientFunds)
	}

	accounts := make([]models.Account, len(l.accounts))
	copy(accounts, l.accounts)
	accounts[src].Balance = accounts[src].Balance.Sub(amount)

	if transferType == models.TransferInternal {
		dst := findAccount(accounts, destination)
		if dst < 0 {
			return nil, fmt.Errorf("account %s: %w", destination, ErrNotFound)
		}
		accounts[dst].Balance = accounts[dst].Balance.Add(amount)
	}
	return accounts, nil
}

// commit persists both keys and then swaps them in. If the second write
// fails the first is rolled back.
func (l *LedgerService) commit(ctx context.Context, accounts []models.Account, transactions []models.Transaction) error {
	if err := save(ctx, l.store, accountsKey, accounts); err != nil {
		return err
	}
	if err := save(ctx, l.store, transactionsKey, transactions); err != nil {
		if rbErr := save(ctx, l.store, accountsKey, l.accounts); rbErr != nil {
			l.logger.Error("Failed to roll back account balances", util.ErrorField(rbErr))
		}
		return err
	}
	l.accounts = accounts
	l.transactions = transactions
	return nil
}

func (l *LedgerService) deny(reason string, cause error) error {
	metrics.TransferDecisions.WithLabelValues("denied").Inc()
	l.alerts.Show(models.AlertError, reason)
	return &DeniedError{Reason: reason, Err: cause}
}

// nextTransactionID returns TXN<millis>, bumping the millisecond when two
// transactions are created within the same one.
func (l *LedgerService) nextTransactionID(millis int64) string {
	if millis <= l.lastTxnMillis {
		millis = l.lastTxnMillis + 1
	}
	l.lastTxnMillis = millis
	return fmt.Sprintf("TXN%d", millis)
}

func prepend(txn models.Transaction, txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txns)+1)
	out = append(out, txn)
	return append(out, txns...)
}
