package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateNew(ctx context.Context, ledger Ledger) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	var lastId string
	if err != nil {
		return lastId, err
	}
	defer tx.Rollback()

	insertLedger := `INSERT INTO ledgers (id, name, currency, created_by, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err = tx.QueryRowContext(
		ctx,
		insertLedger,
		ledger.ID,
		ledger.Name,
		ledger.Currency,
		ledger.CreatedBy,
		ledger.CreatedAt,
	).Scan(&lastId)
	if err != nil {
		return lastId, err
	}

	insertLedgerUser := `INSERT INTO ledger_users (ledger_id, user_id) VALUES ($1, $2)`
	_, err = tx.ExecContext(ctx, insertLedgerUser, ledger.ID, ledger.CreatedBy)
	if err != nil {
		return lastId, err
	}

	return lastId, tx.Commit()
}

func (r *repository) AddMember(ctx context.Context, ledgerID, userID uuid.UUID) error {
	query := `INSERT INTO ledger_users (ledger_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, ledgerID, userID)
	return err
}

func (r *repository) IsMember(ctx context.Context, ledgerID, userID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM ledger_users WHERE ledger_id = $1 AND user_id = $2`
	var one int
	err := r.db.QueryRowContext(ctx, query, ledgerID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repository) SaveExpense(ctx context.Context, expense Expense, splits []Split) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO ledger_expenses (id, ledger_id, description, amount, currency, fx_rate_to_base, paid_by, split_type, category, status, occurred_at, settled_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = tx.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.LedgerID,
		expense.Description,
		expense.AmountCents,
		expense.Currency,
		expense.FxRateToBase,
		expense.PaidBy,
		expense.SplitType,
		expense.Category,
		expense.Status,
		expense.OccurredAt,
		expense.SettledAt,
		expense.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertSplits(ctx, tx, splits); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateExpense rewrites the expense row and replaces its splits in one
// transaction, so the sum-reconciliation invariant holds for readers.
func (r *repository) UpdateExpense(ctx context.Context, expense Expense, splits []Split) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE ledger_expenses
	          SET description = $2, amount = $3, currency = $4, fx_rate_to_base = $5, paid_by = $6, split_type = $7, category = $8, status = $9, occurred_at = $10, settled_at = $11
	          WHERE id = $1`
	_, err = tx.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.Description,
		expense.AmountCents,
		expense.Currency,
		expense.FxRateToBase,
		expense.PaidBy,
		expense.SplitType,
		expense.Category,
		expense.Status,
		expense.OccurredAt,
		expense.SettledAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM ledger_expense_splits WHERE expense_id = $1`, expense.ID)
	if err != nil {
		return err
	}

	if err := insertSplits(ctx, tx, splits); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UpdateExpenseStatus(ctx context.Context, expenseID uuid.UUID, status ExpenseStatus, settledAt *time.Time) error {
	query := `UPDATE ledger_expenses SET status = $2, settled_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, expenseID, status, settledAt)
	return err
}

func insertSplits(ctx context.Context, tx *sql.Tx, splits []Split) error {
	for _, split := range splits {
		query := `INSERT INTO ledger_expense_splits (expense_id, user_id, amount, percentage, settled) VALUES ($1, $2, $3, $4, $5)`
		_, err := tx.ExecContext(ctx, query, split.ExpenseID, split.UserID, split.AmountCents, split.Percentage, split.Settled)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) GetLedgerByID(ctx context.Context, ledgerID string) (*Ledger, error) {
	query := `SELECT id, name, currency, created_by, created_at FROM ledgers WHERE id = $1`

	var ledger Ledger
	err := r.db.QueryRowContext(ctx, query, ledgerID).Scan(
		&ledger.ID,
		&ledger.Name,
		&ledger.Currency,
		&ledger.CreatedBy,
		&ledger.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &ledger, nil
}

func (r *repository) GetLedgerMembers(ctx context.Context, ledgerID string) ([]LedgerUser, error) {
	query := `SELECT ledger_id, user_id, joined_at FROM ledger_users WHERE ledger_id = $1`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []LedgerUser
	for rows.Next() {
		var member LedgerUser
		err := rows.Scan(&member.LedgerID, &member.UserID, &member.JoinedAt)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *repository) GetExpenseByID(ctx context.Context, expenseID string) (*Expense, error) {
	query := `SELECT id, ledger_id, description, amount, currency, fx_rate_to_base, paid_by, split_type, category, status, occurred_at, settled_at, created_at
	          FROM ledger_expenses WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, expenseID)
	expense, err := scanExpense(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return expense, nil
}

// GetExpenses returns the ledger's expenses with logically deleted rows
// filtered out. Balance and analytics queries run over this set.
func (r *repository) GetExpenses(ctx context.Context, ledgerID string) ([]Expense, error) {
	query := `SELECT id, ledger_id, description, amount, currency, fx_rate_to_base, paid_by, split_type, category, status, occurred_at, settled_at, created_at
	          FROM ledger_expenses
	          WHERE ledger_id = $1 AND status != 'deleted'
	          ORDER BY occurred_at DESC`

	return r.queryExpenses(ctx, query, ledgerID)
}

func (r *repository) GetRecentExpenses(ctx context.Context, ledgerID string, limit int) ([]Expense, error) {
	query := `SELECT id, ledger_id, description, amount, currency, fx_rate_to_base, paid_by, split_type, category, status, occurred_at, settled_at, created_at
	          FROM ledger_expenses
	          WHERE ledger_id = $1 AND status != 'deleted'
	          ORDER BY created_at DESC
	          LIMIT $2`

	return r.queryExpenses(ctx, query, ledgerID, limit)
}

func (r *repository) queryExpenses(ctx context.Context, query string, args ...any) ([]Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *expense)
	}

	return expenses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*Expense, error) {
	var expense Expense
	var category sql.NullString
	var settledAt sql.NullTime
	err := row.Scan(
		&expense.ID,
		&expense.LedgerID,
		&expense.Description,
		&expense.AmountCents,
		&expense.Currency,
		&expense.FxRateToBase,
		&expense.PaidBy,
		&expense.SplitType,
		&category,
		&expense.Status,
		&expense.OccurredAt,
		&settledAt,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if category.Valid {
		expense.Category = category.String
	}
	if settledAt.Valid {
		expense.SettledAt = &settledAt.Time
	}
	return &expense, nil
}

func (r *repository) GetExpenseSplits(ctx context.Context, ledgerID string) ([]Split, error) {
	query := `SELECT es.expense_id, es.user_id, es.amount, es.percentage, es.settled
	          FROM ledger_expense_splits es
	          INNER JOIN ledger_expenses e ON es.expense_id = e.id
	          WHERE e.ledger_id = $1 AND e.status != 'deleted'`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var split Split
		err := rows.Scan(&split.ExpenseID, &split.UserID, &split.AmountCents, &split.Percentage, &split.Settled)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}

	return splits, rows.Err()
}

func (r *repository) GetSplitsByExpense(ctx context.Context, expenseID string) ([]Split, error) {
	query := `SELECT expense_id, user_id, amount, percentage, settled FROM ledger_expense_splits WHERE expense_id = $1`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var split Split
		err := rows.Scan(&split.ExpenseID, &split.UserID, &split.AmountCents, &split.Percentage, &split.Settled)
		if err != nil {
			return nil, err
		}
		splits = append(splits, split)
	}

	return splits, rows.Err()
}

func (r *repository) SaveSettlement(ctx context.Context, settlement Settlement) error {
	query := `INSERT INTO ledger_settlements (id, ledger_id, from_user, to_user, amount, note, confirmed_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		settlement.ID,
		settlement.LedgerID,
		settlement.FromUserID,
		settlement.ToUserID,
		settlement.AmountCents,
		settlement.Note,
		settlement.ConfirmedAt,
		settlement.CreatedAt,
	)
	return err
}

func (r *repository) ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt time.Time) error {
	query := `UPDATE ledger_settlements SET confirmed_at = $2 WHERE id = $1 AND confirmed_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, settlementID, confirmedAt)
	return err
}

func (r *repository) GetSettlements(ctx context.Context, ledgerID string) ([]Settlement, error) {
	query := `SELECT id, ledger_id, from_user, to_user, amount, note, confirmed_at, created_at
	          FROM ledger_settlements
	          WHERE ledger_id = $1
	          ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []Settlement
	for rows.Next() {
		var settlement Settlement
		var note sql.NullString
		var confirmedAt sql.NullTime
		err := rows.Scan(
			&settlement.ID,
			&settlement.LedgerID,
			&settlement.FromUserID,
			&settlement.ToUserID,
			&settlement.AmountCents,
			&note,
			&confirmedAt,
			&settlement.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if note.Valid {
			settlement.Note = note.String
		}
		if confirmedAt.Valid {
			settlement.ConfirmedAt = &confirmedAt.Time
		}
		settlements = append(settlements, settlement)
	}

	return settlements, rows.Err()
}
