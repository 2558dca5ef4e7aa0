package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func agedExpense(daysAgo int, amountCents int64, status ExpenseStatus, now time.Time) Expense {
	expense := Expense{
		ID:           uuid.New(),
		AmountCents:  amountCents,
		FxRateToBase: 1.0,
		Status:       status,
		OccurredAt:   now.AddDate(0, 0, -daysAgo),
	}
	if status == StatusSettled {
		settled := now
		expense.SettledAt = &settled
	}
	return expense
}

func bucketByLabel(t *testing.T, buckets []AgingBucket, label string) AgingBucket {
	t.Helper()
	for _, b := range buckets {
		if b.Label == label {
			return b
		}
	}
	t.Fatalf("no bucket labelled %q", label)
	return AgingBucket{}
}

func TestAgingBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	expenses := []Expense{
		agedExpense(5, 1000, StatusActive, now),
		agedExpense(20, 2000, StatusActive, now),
		agedExpense(45, 3000, StatusDisputed, now),
		agedExpense(90, 4000, StatusActive, now),
		agedExpense(90, 9999, StatusSettled, now), // settled: excluded from all buckets
	}

	buckets := AgingBuckets(expenses, now)
	require.Len(t, buckets, 4)

	require.Equal(t, AgingBucket{Label: "0-7", Count: 1, AmountCents: 1000}, bucketByLabel(t, buckets, "0-7"))
	require.Equal(t, AgingBucket{Label: "8-30", Count: 1, AmountCents: 2000}, bucketByLabel(t, buckets, "8-30"))
	require.Equal(t, AgingBucket{Label: "31-60", Count: 1, AmountCents: 3000}, bucketByLabel(t, buckets, "31-60"))
	require.Equal(t, AgingBucket{Label: "60+", Count: 1, AmountCents: 4000}, bucketByLabel(t, buckets, "60+"))
}

func TestAgingBucketBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	buckets := AgingBuckets([]Expense{agedExpense(7, 100, StatusActive, now)}, now)
	require.Equal(t, 1, bucketByLabel(t, buckets, "0-7").Count, "day 7 still belongs to 0-7")

	buckets = AgingBuckets([]Expense{agedExpense(8, 100, StatusActive, now)}, now)
	require.Equal(t, 1, bucketByLabel(t, buckets, "8-30").Count)

	buckets = AgingBuckets([]Expense{agedExpense(61, 100, StatusActive, now)}, now)
	require.Equal(t, 1, bucketByLabel(t, buckets, "60+").Count)
}

func TestAgingBucketsEmpty(t *testing.T) {
	buckets := AgingBuckets(nil, time.Now())
	require.Len(t, buckets, 4)
	for _, b := range buckets {
		require.Zero(t, b.Count)
		require.Zero(t, b.AmountCents)
	}
}

func settledExpense(occurred time.Time, daysToSettle int) Expense {
	settled := occurred.AddDate(0, 0, daysToSettle)
	return Expense{
		ID:         uuid.New(),
		Status:     StatusSettled,
		OccurredAt: occurred,
		SettledAt:  &settled,
	}
}

func TestVelocity(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		settledExpense(start, 10),
		settledExpense(start, 2),
		settledExpense(start, 4),
		{ID: uuid.New(), Status: StatusActive, OccurredAt: start}, // unsettled: ignored
	}

	velocity := Velocity(expenses)
	require.Equal(t, 3, velocity.SampleCount)
	require.InDelta(t, 16.0/3.0, velocity.MeanDays, 1e-9)
	require.Equal(t, 4, velocity.MedianDays)
	require.Equal(t, 2, velocity.MinDays)
	require.Equal(t, 10, velocity.MaxDays)
}

func TestVelocityEvenSampleUsesLowerMiddle(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		settledExpense(start, 2),
		settledExpense(start, 8),
	}

	require.Equal(t, 2, Velocity(expenses).MedianDays)
}

func TestVelocityEmpty(t *testing.T) {
	require.Equal(t, SettlementVelocity{}, Velocity(nil))
	require.Equal(t, SettlementVelocity{}, Velocity([]Expense{{Status: StatusActive}}))
}

func TestFairness(t *testing.T) {
	balanced := &NetBalance{UserID: uuid.New(), TotalPaidCents: 5000, TotalOwedCents: 5000, NetCents: 0}
	score := Fairness(balanced)
	require.Zero(t, score.Score)
	require.True(t, score.Fair)

	skewed := &NetBalance{UserID: uuid.New(), TotalPaidCents: 10000, TotalOwedCents: 0, NetCents: 10000}
	score = Fairness(skewed)
	require.Equal(t, 100.0, score.Score)
	require.False(t, score.Fair)

	slight := &NetBalance{UserID: uuid.New(), TotalPaidCents: 5100, TotalOwedCents: 4900, NetCents: 200}
	score = Fairness(slight)
	require.InDelta(t, 2.0, score.Score, 1e-9)
	require.True(t, score.Fair)
}

func TestFairnessNoActivity(t *testing.T) {
	score := Fairness(&NetBalance{UserID: uuid.New()})
	require.Zero(t, score.Score)
	require.True(t, score.Fair)
}

func TestFairnessMetricsStableOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	balances := map[uuid.UUID]*NetBalance{
		a: {UserID: a, TotalPaidCents: 100, TotalOwedCents: 100},
		b: {UserID: b, TotalPaidCents: 200, TotalOwedCents: 100, NetCents: 100},
	}

	scores := FairnessMetrics(balances)
	require.Len(t, scores, 2)
	require.Less(t, scores[0].UserID.String(), scores[1].UserID.String())
}

func TestParticipationMetrics(t *testing.T) {
	ledgerID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	e1, s1 := expenseWithSplits(ledgerID, a, 1000, 1.0, a, b)
	e2, s2 := expenseWithSplits(ledgerID, b, 600, 1.0, a, b)
	e3, s3 := expenseWithSplits(ledgerID, a, 900, 1.0, a, b, c)

	expenses := []Expense{e1, e2, e3}
	splits := append(append(s1, s2...), s3...)

	rates := ParticipationMetrics(expenses, splits, []uuid.UUID{a, b, c})
	require.Len(t, rates, 3)

	byUser := make(map[uuid.UUID]ParticipationRate)
	for _, rate := range rates {
		byUser[rate.UserID] = rate
	}

	require.Equal(t, 3, byUser[a].Participated)
	require.Equal(t, 100, byUser[a].Rate)
	require.Equal(t, 100, byUser[b].Rate)
	require.Equal(t, 1, byUser[c].Participated)
	require.Equal(t, 33, byUser[c].Rate)
	require.Equal(t, 3, byUser[c].Total)
}

func TestParticipationMetricsNoExpenses(t *testing.T) {
	rates := ParticipationMetrics(nil, nil, []uuid.UUID{uuid.New()})
	require.Len(t, rates, 1)
	require.Zero(t, rates[0].Rate)
	require.Zero(t, rates[0].Total)
}
