package ledger

import (
	"github.com/google/uuid"
	"github.com/rmacedo/splitledger/money"
)

// NetBalance is one participant's position across every expense
// considered, in base-currency cents. Positive Net means others owe them.
type NetBalance struct {
	UserID         uuid.UUID `json:"user_id"`
	TotalPaidCents int64     `json:"total_paid_cents"`
	TotalOwedCents int64     `json:"total_owed_cents"`
	NetCents       int64     `json:"net_cents"`
}

// BalanceMatrix maps debtor -> creditor -> base-currency cents owed.
// Every ordered pair of the participant set is present; the diagonal is
// always zero.
type BalanceMatrix map[uuid.UUID]map[uuid.UUID]int64

// ComputeBalances folds the expense collection into per-participant net
// balances and the full pairwise matrix. Each split is normalized to the
// ledger's base currency with its expense's fx rate; a participant's split
// against their own paid expense contributes nothing to the matrix.
//
// The fold is pure: it keeps no state between calls and is safe to rerun
// on every query.
func ComputeBalances(expenses []Expense, splits []Split, memberIDs []uuid.UUID) (map[uuid.UUID]*NetBalance, BalanceMatrix) {
	balances := make(map[uuid.UUID]*NetBalance)
	matrix := make(BalanceMatrix)

	ids := make([]uuid.UUID, 0, len(memberIDs))
	seen := make(map[uuid.UUID]bool)
	track := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
			balances[id] = &NetBalance{UserID: id}
		}
	}

	for _, id := range memberIDs {
		track(id)
	}

	expenseByID := make(map[uuid.UUID]Expense, len(expenses))
	for _, expense := range expenses {
		expenseByID[expense.ID] = expense
		track(expense.PaidBy)
		balances[expense.PaidBy].TotalPaidCents += expense.BaseAmountCents()
	}

	for _, split := range splits {
		expense, ok := expenseByID[split.ExpenseID]
		if !ok {
			continue
		}
		track(split.UserID)

		share := money.ToBase(split.AmountCents, expense.FxRateToBase)
		balances[split.UserID].TotalOwedCents += share

		if split.UserID == expense.PaidBy {
			// Self-debt is always zero
			continue
		}
		if matrix[split.UserID] == nil {
			matrix[split.UserID] = make(map[uuid.UUID]int64)
		}
		matrix[split.UserID][expense.PaidBy] += share
	}

	// Fill in the zero entries so the matrix covers every ordered pair.
	for _, debtor := range ids {
		if matrix[debtor] == nil {
			matrix[debtor] = make(map[uuid.UUID]int64)
		}
		for _, creditor := range ids {
			if _, ok := matrix[debtor][creditor]; !ok {
				matrix[debtor][creditor] = 0
			}
		}
		matrix[debtor][debtor] = 0
	}

	for _, balance := range balances {
		balance.NetCents = balance.TotalPaidCents - balance.TotalOwedCents
	}

	return balances, matrix
}
