package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rmacedo/splitledger/money"
)

type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeWeighted   SplitType = "weighted"
	SplitTypePercentage SplitType = "percentage"
)

type ExpenseStatus string

const (
	StatusActive   ExpenseStatus = "active"
	StatusSettled  ExpenseStatus = "settled"
	StatusDeleted  ExpenseStatus = "deleted"
	StatusDisputed ExpenseStatus = "disputed"
	StatusArchived ExpenseStatus = "archived"
)

type Ledger struct {
	ID        uuid.UUID `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Currency  string    `json:"currency,omitempty"` // base currency, all balances reported in it
	CreatedBy uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Expense struct {
	ID           uuid.UUID     `json:"id,omitempty"`
	LedgerID     uuid.UUID     `json:"ledger_id,omitempty"`
	Description  string        `json:"description,omitempty"`
	AmountCents  int64         `json:"amount_cents,omitempty"` // in the expense's own currency
	Currency     string        `json:"currency,omitempty"`
	FxRateToBase float64       `json:"fx_rate_to_base,omitempty"` // 1.0 when currency == ledger base
	PaidBy       uuid.UUID     `json:"paid_by,omitempty"`
	SplitType    SplitType     `json:"split_type,omitempty"`
	Category     string        `json:"category,omitempty"`
	Status       ExpenseStatus `json:"status,omitempty"`
	OccurredAt   time.Time     `json:"occurred_at,omitempty"`
	SettledAt    *time.Time    `json:"settled_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at,omitempty"`
}

// BaseAmountCents is the expense total expressed in the ledger's base
// currency. Derived, never stored.
func (e Expense) BaseAmountCents() int64 {
	return money.ToBase(e.AmountCents, e.FxRateToBase)
}

type Split struct {
	ExpenseID   uuid.UUID `json:"expense_id,omitempty"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"` // in the expense's currency
	Percentage  float64   `json:"percentage,omitempty"`   // 0-100, only for percentage splits
	Settled     bool      `json:"settled,omitempty"`
}

// Participant is one member's stake in an expense being recorded.
// Weight is read for weighted splits, Percentage for percentage splits.
type Participant struct {
	UserID     uuid.UUID `json:"user_id"`
	Weight     float64   `json:"weight,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
}

type LedgerUser struct {
	LedgerID uuid.UUID `json:"ledger_id,omitempty"`
	UserID   uuid.UUID `json:"user_id,omitempty"`
	JoinedAt time.Time `json:"joined_at,omitempty"`
}

// Settlement is a persisted, confirmable transfer instruction. The
// minimizer suggests these; recording and confirming them is a user
// decision, never automatic.
type Settlement struct {
	ID          uuid.UUID  `json:"id,omitempty"`
	LedgerID    uuid.UUID  `json:"ledger_id,omitempty"`
	FromUserID  uuid.UUID  `json:"from_user_id,omitempty"`
	ToUserID    uuid.UUID  `json:"to_user_id,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	Note        string     `json:"note,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

var (
	ErrEmptyName        = errors.New("name can't be empty")
	ErrEmptyCurrency    = errors.New("currency can't be empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrEmptyDescription = errors.New("description can't be empty")
	ErrNoParticipants   = errors.New("expense needs at least one participant")
	ErrInvalidSplit     = errors.New("split adjustment would make a share negative")
	ErrInvalidStatus    = errors.New("unknown expense status")

	ErrUnsupportedSplitType = errors.New("unsupported split type")
)

func NewLedger(name string, currency string, createdBy uuid.UUID) (Ledger, error) {
	if name == "" {
		return Ledger{}, ErrEmptyName
	}

	if currency == "" {
		return Ledger{}, ErrEmptyCurrency
	}

	return Ledger{
		ID:        uuid.New(),
		Name:      name,
		Currency:  currency,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewExpense validates the inputs, allocates splits per the split type and
// returns the expense together with its splits. The returned splits always
// sum exactly to amountCents.
func NewExpense(ledgerID uuid.UUID, description string, amountCents int64, currency string, fxRateToBase float64, paidBy uuid.UUID, splitType SplitType, category string, occurredAt time.Time, participants []Participant) (*Expense, []Split, error) {
	if description == "" {
		return nil, nil, ErrEmptyDescription
	}

	if amountCents <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	if currency == "" {
		return nil, nil, ErrEmptyCurrency
	}

	if len(participants) == 0 {
		return nil, nil, ErrNoParticipants
	}

	if fxRateToBase <= 0 {
		fxRateToBase = 1.0
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	expense := &Expense{
		ID:           uuid.New(),
		LedgerID:     ledgerID,
		Description:  description,
		AmountCents:  amountCents,
		Currency:     currency,
		FxRateToBase: fxRateToBase,
		PaidBy:       paidBy,
		SplitType:    splitType,
		Category:     category,
		Status:       StatusActive,
		OccurredAt:   occurredAt,
		CreatedAt:    time.Now().UTC(),
	}

	splits, err := AllocateSplits(expense.ID, amountCents, splitType, participants)
	if err != nil {
		return nil, nil, err
	}

	return expense, splits, nil
}

// ValidStatus reports whether s is one of the known expense statuses.
func ValidStatus(s ExpenseStatus) bool {
	switch s {
	case StatusActive, StatusSettled, StatusDeleted, StatusDisputed, StatusArchived:
		return true
	}
	return false
}
