package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func expenseWithSplits(ledgerID, payer uuid.UUID, amountCents int64, fxRate float64, splitters ...uuid.UUID) (Expense, []Split) {
	participants := make([]Participant, len(splitters))
	for i, id := range splitters {
		participants[i] = Participant{UserID: id}
	}
	expense, splits, err := NewExpense(ledgerID, "test expense", amountCents, "USD", fxRate, payer, SplitTypeEqual, "", time.Now(), participants)
	if err != nil {
		panic(err)
	}
	return *expense, splits
}

func TestComputeBalancesSingleExpense(t *testing.T) {
	ledgerID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	memberIDs := []uuid.UUID{a, b, c}

	expense, splits := expenseWithSplits(ledgerID, a, 3000, 1.0, a, b, c)

	balances, matrix := ComputeBalances([]Expense{expense}, splits, memberIDs)

	require.Equal(t, int64(3000), balances[a].TotalPaidCents)
	require.Equal(t, int64(1000), balances[a].TotalOwedCents)
	require.Equal(t, int64(2000), balances[a].NetCents)
	require.Equal(t, int64(-1000), balances[b].NetCents)
	require.Equal(t, int64(-1000), balances[c].NetCents)

	require.Equal(t, int64(1000), matrix[b][a])
	require.Equal(t, int64(1000), matrix[c][a])
	require.Equal(t, int64(0), matrix[a][b], "payer owes nobody here")
	require.Equal(t, int64(0), matrix[a][a], "diagonal is always zero")
}

func TestComputeBalancesMatrixCoversAllPairs(t *testing.T) {
	memberIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	_, matrix := ComputeBalances(nil, nil, memberIDs)

	require.Len(t, matrix, 4)
	for _, debtor := range memberIDs {
		require.Len(t, matrix[debtor], 4)
		for _, creditor := range memberIDs {
			require.Equal(t, int64(0), matrix[debtor][creditor])
		}
	}
}

func TestComputeBalancesFxNormalization(t *testing.T) {
	ledgerID := uuid.New()
	a, b := uuid.New(), uuid.New()

	// 1000 cents at 1.5x: each 500-cent split is worth 750 base cents.
	expense, splits := expenseWithSplits(ledgerID, a, 1000, 1.5, a, b)

	balances, matrix := ComputeBalances([]Expense{expense}, splits, []uuid.UUID{a, b})

	require.Equal(t, int64(1500), balances[a].TotalPaidCents)
	require.Equal(t, int64(750), balances[a].TotalOwedCents)
	require.Equal(t, int64(750), balances[a].NetCents)
	require.Equal(t, int64(-750), balances[b].NetCents)
	require.Equal(t, int64(750), matrix[b][a])
}

func TestComputeBalancesSymmetry(t *testing.T) {
	ledgerID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	memberIDs := []uuid.UUID{a, b, c}

	e1, s1 := expenseWithSplits(ledgerID, a, 3000, 1.0, a, b, c)
	e2, s2 := expenseWithSplits(ledgerID, b, 1200, 1.0, a, b)
	e3, s3 := expenseWithSplits(ledgerID, c, 900, 1.0, b, c)

	expenses := []Expense{e1, e2, e3}
	splits := append(append(s1, s2...), s3...)

	balances, matrix := ComputeBalances(expenses, splits, memberIDs)

	// With a single currency the nets cancel out exactly.
	var totalNet int64
	for _, balance := range balances {
		totalNet += balance.NetCents
	}
	require.Equal(t, int64(0), totalNet)

	// Each net balance is exactly what the matrix implies: credit owed to
	// the participant minus debt owed by them.
	for _, id := range memberIDs {
		var credit, debt int64
		for _, other := range memberIDs {
			credit += matrix[other][id]
			debt += matrix[id][other]
		}
		require.Equal(t, balances[id].NetCents, credit-debt, "participant %s", id)
	}
}

func TestComputeBalancesIgnoresOrphanSplits(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	orphan := Split{ExpenseID: uuid.New(), UserID: b, AmountCents: 999}

	balances, _ := ComputeBalances(nil, []Split{orphan}, []uuid.UUID{a, b})

	require.Equal(t, int64(0), balances[b].TotalOwedCents)
}

func TestComputeBalancesIsPure(t *testing.T) {
	ledgerID := uuid.New()
	a, b := uuid.New(), uuid.New()
	expense, splits := expenseWithSplits(ledgerID, a, 500, 1.0, a, b)

	first, _ := ComputeBalances([]Expense{expense}, splits, []uuid.UUID{a, b})
	second, _ := ComputeBalances([]Expense{expense}, splits, []uuid.UUID{a, b})

	// No state carries over between calls.
	require.Equal(t, first[a].NetCents, second[a].NetCents)
	require.Equal(t, first[b].NetCents, second[b].NetCents)
}
