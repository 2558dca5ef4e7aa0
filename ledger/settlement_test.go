package ledger

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func netBalances(nets map[uuid.UUID]int64) map[uuid.UUID]*NetBalance {
	balances := make(map[uuid.UUID]*NetBalance, len(nets))
	for id, net := range nets {
		balances[id] = &NetBalance{UserID: id, NetCents: net}
	}
	return balances
}

func TestMinimizeSimple(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	balances := netBalances(map[uuid.UUID]int64{a: 150, b: -100, c: -50})

	instructions := Minimize(balances)

	require.Len(t, instructions, 2)
	require.Equal(t, SettlementInstruction{FromUserID: b, ToUserID: a, AmountCents: 100}, instructions[0])
	require.Equal(t, SettlementInstruction{FromUserID: c, ToUserID: a, AmountCents: 50}, instructions[1])
}

func TestMinimizeZeroesEveryBalance(t *testing.T) {
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
	}
	nets := map[uuid.UUID]int64{
		ids[0]: 7300,
		ids[1]: -2100,
		ids[2]: -900,
		ids[3]: 400,
		ids[4]: -4700,
		ids[5]: 0,
	}
	balances := netBalances(nets)

	instructions := Minimize(balances)

	// Replaying every instruction drives each participant to exactly zero.
	remaining := make(map[uuid.UUID]int64, len(nets))
	for id, net := range nets {
		remaining[id] = net
	}
	for _, ins := range instructions {
		require.Positive(t, ins.AmountCents)
		remaining[ins.FromUserID] += ins.AmountCents
		remaining[ins.ToUserID] -= ins.AmountCents
	}
	for id, net := range remaining {
		require.Zero(t, net, "participant %s", id)
	}

	require.LessOrEqual(t, len(instructions), len(nets)-1)
}

func TestMinimizeTotalMovedEqualsOutstandingCredit(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	balances := netBalances(map[uuid.UUID]int64{a: 5000, b: 2500, c: -4000, d: -3500})

	instructions := Minimize(balances)

	var moved int64
	for _, ins := range instructions {
		moved += ins.AmountCents
	}
	require.Equal(t, int64(7500), moved)
}

func TestMinimizeTieBreakIsDeterministic(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })
	creditor := uuid.New()

	balances := netBalances(map[uuid.UUID]int64{
		creditor: 200,
		ids[0]:   -100,
		ids[1]:   -100,
	})

	// Equal debtor magnitudes: the lower user ID goes first, every time.
	for i := 0; i < 10; i++ {
		instructions := Minimize(balances)
		require.Len(t, instructions, 2)
		require.Equal(t, ids[0], instructions[0].FromUserID)
		require.Equal(t, ids[1], instructions[1].FromUserID)
	}
}

func TestMinimizeAlreadySettled(t *testing.T) {
	balances := netBalances(map[uuid.UUID]int64{uuid.New(): 0, uuid.New(): 0})
	require.Empty(t, Minimize(balances))
	require.Empty(t, Minimize(nil))
}
