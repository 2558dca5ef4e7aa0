package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// SettlementInstruction is one suggested transfer. A list of these clears
// every net balance it was computed from.
type SettlementInstruction struct {
	FromUserID  uuid.UUID `json:"from_user_id"`
	ToUserID    uuid.UUID `json:"to_user_id"`
	AmountCents int64     `json:"amount_cents"`
}

type settlementParty struct {
	userID    uuid.UUID
	remaining int64
}

// Minimize reduces the net balances to a small set of direct transfers
// using greedy largest-first matching: the largest remaining debtor pays
// the largest remaining creditor min(debt, credit), and whichever side
// reaches zero is retired. The result zeroes every balance with at most
// participants-1 instructions.
//
// Ties on magnitude are broken by user ID ascending, so the instruction
// set is deterministic for a given input.
func Minimize(balances map[uuid.UUID]*NetBalance) []SettlementInstruction {
	var creditors, debtors []settlementParty
	for _, balance := range balances {
		switch {
		case balance.NetCents > 0:
			creditors = append(creditors, settlementParty{balance.UserID, balance.NetCents})
		case balance.NetCents < 0:
			debtors = append(debtors, settlementParty{balance.UserID, -balance.NetCents})
		}
	}

	sortLargestFirst(creditors)
	sortLargestFirst(debtors)

	instructions := make([]SettlementInstruction, 0, len(creditors)+len(debtors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := min(debtor.remaining, creditor.remaining)
		if amount > 0 {
			instructions = append(instructions, SettlementInstruction{
				FromUserID:  debtor.userID,
				ToUserID:    creditor.userID,
				AmountCents: amount,
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount
		if debtor.remaining == 0 {
			i++
		}
		if creditor.remaining == 0 {
			j++
		}
	}

	return instructions
}

func sortLargestFirst(parties []settlementParty) {
	sort.Slice(parties, func(a, b int) bool {
		if parties[a].remaining != parties[b].remaining {
			return parties[a].remaining > parties[b].remaining
		}
		return parties[a].userID.String() < parties[b].userID.String()
	})
}
