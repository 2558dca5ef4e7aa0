package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// AgingBucket groups unsettled expenses by how many days ago they
// occurred, in base-currency cents.
type AgingBucket struct {
	Label       string `json:"label"`
	Count       int    `json:"count"`
	AmountCents int64  `json:"amount_cents"`
}

// SettlementVelocity summarizes how long settled expenses took to settle.
type SettlementVelocity struct {
	SampleCount int     `json:"sample_count"`
	MeanDays    float64 `json:"mean_days"`
	MedianDays  int     `json:"median_days"`
	MinDays     int     `json:"min_days"`
	MaxDays     int     `json:"max_days"`
}

// FairnessScore measures how far a participant's net balance is from zero
// relative to their total activity. Below 5 counts as fair.
type FairnessScore struct {
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
	Fair   bool      `json:"fair"`
}

// ParticipationRate is how often a member shows up in the expense set,
// as payer or splitter.
type ParticipationRate struct {
	UserID       uuid.UUID `json:"user_id"`
	Participated int       `json:"participated"`
	Total        int       `json:"total"`
	Rate         int       `json:"rate"` // percent, rounded to nearest integer
}

const day = 24 * time.Hour

var agingLabels = []struct {
	label   string
	maxDays int64
}{
	{"0-7", 7},
	{"8-30", 30},
	{"31-60", 60},
	{"60+", math.MaxInt64},
}

// AgingBuckets classifies every non-settled expense by whole days elapsed
// since it occurred, relative to now. Settled expenses are excluded
// entirely. All four buckets are always present, in order.
func AgingBuckets(expenses []Expense, now time.Time) []AgingBucket {
	buckets := make([]AgingBucket, len(agingLabels))
	for i, l := range agingLabels {
		buckets[i] = AgingBucket{Label: l.label}
	}

	for _, expense := range expenses {
		if expense.Status == StatusSettled {
			continue
		}
		days := int64(now.Sub(expense.OccurredAt) / day)
		for i, l := range agingLabels {
			if days <= l.maxDays {
				buckets[i].Count++
				buckets[i].AmountCents += expense.BaseAmountCents()
				break
			}
		}
	}

	return buckets
}

// Velocity reports day-count statistics over settled expenses. The median
// is the lower-middle element of the sorted day counts. An empty sample
// yields the zero value, not an error.
func Velocity(expenses []Expense) SettlementVelocity {
	var days []int
	for _, expense := range expenses {
		if expense.Status != StatusSettled || expense.SettledAt == nil {
			continue
		}
		days = append(days, int(expense.SettledAt.Sub(expense.OccurredAt)/day))
	}
	if len(days) == 0 {
		return SettlementVelocity{}
	}

	sort.Ints(days)
	var sum int
	for _, d := range days {
		sum += d
	}

	return SettlementVelocity{
		SampleCount: len(days),
		MeanDays:    float64(sum) / float64(len(days)),
		MedianDays:  days[(len(days)-1)/2],
		MinDays:     days[0],
		MaxDays:     days[len(days)-1],
	}
}

// Fairness scores one participant's balance: |net| relative to total
// activity, as a percentage. A participant with no activity scores 0.
func Fairness(balance *NetBalance) FairnessScore {
	score := FairnessScore{UserID: balance.UserID}
	activity := balance.TotalPaidCents + balance.TotalOwedCents
	if activity != 0 {
		net := balance.NetCents
		if net < 0 {
			net = -net
		}
		score.Score = float64(net) / float64(activity) * 100
	}
	score.Fair = score.Score < 5
	return score
}

// FairnessMetrics scores every participant in the balance set, ordered by
// user ID so the output is stable.
func FairnessMetrics(balances map[uuid.UUID]*NetBalance) []FairnessScore {
	scores := make([]FairnessScore, 0, len(balances))
	for _, balance := range balances {
		scores = append(scores, Fairness(balance))
	}
	sort.Slice(scores, func(a, b int) bool {
		return scores[a].UserID.String() < scores[b].UserID.String()
	})
	return scores
}

// ParticipationMetrics counts, per member, the expenses they appear in as
// payer or splitter against the total considered.
func ParticipationMetrics(expenses []Expense, splits []Split, memberIDs []uuid.UUID) []ParticipationRate {
	splittersByExpense := make(map[uuid.UUID]map[uuid.UUID]bool)
	for _, split := range splits {
		if splittersByExpense[split.ExpenseID] == nil {
			splittersByExpense[split.ExpenseID] = make(map[uuid.UUID]bool)
		}
		splittersByExpense[split.ExpenseID][split.UserID] = true
	}

	total := len(expenses)
	rates := make([]ParticipationRate, 0, len(memberIDs))
	for _, userID := range memberIDs {
		participated := 0
		for _, expense := range expenses {
			if expense.PaidBy == userID || splittersByExpense[expense.ID][userID] {
				participated++
			}
		}

		rate := ParticipationRate{UserID: userID, Participated: participated, Total: total}
		if total > 0 {
			rate.Rate = int(math.Round(float64(participated) / float64(total) * 100))
		}
		rates = append(rates, rate)
	}

	return rates
}
