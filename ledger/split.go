package ledger

import (
	"math"

	"github.com/google/uuid"
)

// Allocate splits totalCents across the participants according to the
// split type and returns one share per participant, in input order. The
// shares always sum exactly to totalCents.
//
// Equal concentrates the remainder on the first participants: each of the
// first totalCents%n shares is one cent larger than the rest. Weighted and
// percentage round each raw share and push the accumulated rounding error
// onto the last share; if that adjustment would drive the last share
// negative the allocation fails with ErrInvalidSplit. An empty participant
// list yields an empty result.
func Allocate(totalCents int64, splitType SplitType, participants []Participant) ([]int64, error) {
	n := int64(len(participants))
	if n <= 0 {
		return []int64{}, nil
	}

	switch splitType {
	case SplitTypeWeighted:
		weights := make([]float64, n)
		var sum float64
		for i, p := range participants {
			weights[i] = p.Weight
			sum += p.Weight
		}
		if sum == 0 {
			// No usable weights, treat as an equal split.
			return allocateEqual(totalCents, n), nil
		}
		return allocateProportional(totalCents, weights, sum)

	case SplitTypePercentage:
		percentages := make([]float64, n)
		for i, p := range participants {
			percentages[i] = p.Percentage
		}
		return allocateProportional(totalCents, percentages, 100)

	case SplitTypeEqual, "":
		return allocateEqual(totalCents, n), nil

	default:
		return nil, ErrUnsupportedSplitType
	}
}

// AllocateSplits runs Allocate and attaches the resulting shares to split
// records for the given expense.
func AllocateSplits(expenseID uuid.UUID, totalCents int64, splitType SplitType, participants []Participant) ([]Split, error) {
	shares, err := Allocate(totalCents, splitType, participants)
	if err != nil {
		return nil, err
	}

	splits := make([]Split, 0, len(participants))
	for i, p := range participants {
		split := Split{
			ExpenseID:   expenseID,
			UserID:      p.UserID,
			AmountCents: shares[i],
		}
		if splitType == SplitTypePercentage {
			split.Percentage = p.Percentage
		}
		splits = append(splits, split)
	}

	return splits, nil
}

func allocateEqual(totalCents, n int64) []int64 {
	base := totalCents / n
	remainder := totalCents % n

	shares := make([]int64, n)
	for i := range shares {
		shares[i] = base
		// Distribute remainder to first few participants
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}

func allocateProportional(totalCents int64, parts []float64, sum float64) ([]int64, error) {
	shares := make([]int64, len(parts))
	var allocated int64
	for i, part := range parts {
		shares[i] = int64(math.Round(part / sum * float64(totalCents)))
		allocated += shares[i]
	}

	// The last participant absorbs the rounding error so the shares
	// reconcile exactly to the total.
	last := len(shares) - 1
	shares[last] += totalCents - allocated
	if shares[last] < 0 {
		return nil, ErrInvalidSplit
	}

	return shares, nil
}
