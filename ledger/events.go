package ledger

import "time"

type LedgerCreatedEvent struct {
	LedgerID  string
	Name      string
	Currency  string
	CreatedBy string
	CreatedAt time.Time
}

type ExpenseRecordedEvent struct {
	ExpenseID    string
	LedgerID     string
	PaidByUserID string
	AmountCents  int64
	Currency     string
	FxRateToBase float64
	Description  string
	Category     string // e.g., "groceries", "utilities", "rent"
	SplitType    SplitType
	OccurredAt   time.Time
	SplitCount   int
}

type ExpenseStatusChangedEvent struct {
	ExpenseID string
	LedgerID  string
	From      ExpenseStatus
	To        ExpenseStatus
	ChangedBy string
}

type SettlementRecordedEvent struct {
	SettlementID string
	LedgerID     string
	FromUserID   string
	ToUserID     string
	AmountCents  int64
}

type SettlementConfirmedEvent struct {
	SettlementID string
	LedgerID     string
	ConfirmedBy  string
	ConfirmedAt  time.Time
}
