package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func TestParseLegacySingleMethod(t *testing.T) {
	entries := Parse("Cash")
	require.Len(t, entries, 1)
	assert.Equal(t, "Cash", entries[0].Method)
	assert.Nil(t, entries[0].Amount)
}

func TestParseSplitArray(t *testing.T) {
	entries := Parse(`[{"method":"cash","amount":300},{"method":"gcash","amount":200}]`)
	require.Len(t, entries, 2)
	assert.Equal(t, "cash", entries[0].Method)
	require.NotNil(t, entries[0].Amount)
	assert.InDelta(t, 300, *entries[0].Amount, 0.001)
	assert.Equal(t, "gcash", entries[1].Method)
}

func TestParseNeverFails(t *testing.T) {
	for _, raw := range []string{"{broken", "[]", "null", "GCash Maya"} {
		entries := Parse(raw)
		require.Len(t, entries, 1, "raw=%q", raw)
		assert.Equal(t, raw, entries[0].Method)
		assert.Nil(t, entries[0].Amount)
	}
	assert.Nil(t, Parse(""))
}

func TestParseEncodeRoundTrip(t *testing.T) {
	raws := []string{
		"Cash",
		`[{"method":"cash","amount":300},{"method":"gcash","amount":200}]`,
	}
	for _, raw := range raws {
		entries := Parse(raw)
		again := Parse(Encode(entries))
		assert.Equal(t, entries, again, "raw=%q", raw)
	}
}

func TestTotalsLegacyCashGetsFullTotal(t *testing.T) {
	var totals Totals
	totals.Add("Cash", 250)
	assert.InDelta(t, 250, totals.Cash, 0.001)
	assert.Zero(t, totals.GCash)
	assert.Zero(t, totals.Other)
}

func TestTotalsBucketsAreCaseInsensitive(t *testing.T) {
	var totals Totals
	totals.Add("GCASH", 120)
	totals.Add("Bank Transfer", 80)
	totals.Add("store credit", 40)
	assert.InDelta(t, 120, totals.GCash, 0.001)
	assert.InDelta(t, 80, totals.BankTransfer, 0.001)
	assert.InDelta(t, 40, totals.Other, 0.001)
}

func TestTotalsSplitUsesEntryAmounts(t *testing.T) {
	var totals Totals
	totals.Add(Encode([]Entry{
		{Method: "cash", Amount: amount(300)},
		{Method: "card", Amount: amount(200)},
	}), 500)
	assert.InDelta(t, 300, totals.Cash, 0.001)
	assert.InDelta(t, 200, totals.Card, 0.001)
}

func TestCashAmount(t *testing.T) {
	assert.InDelta(t, 250, CashAmount("Cash", 250), 0.001)
	assert.Zero(t, CashAmount("GCash", 250))

	split := Encode([]Entry{
		{Method: "cash", Amount: amount(100)},
		{Method: "gcash", Amount: amount(150)},
	})
	assert.InDelta(t, 100, CashAmount(split, 250), 0.001)
	assert.InDelta(t, 150, NonCashAmount(split, 250), 0.001)
}

func TestHasCash(t *testing.T) {
	assert.True(t, HasCash("cash"))
	assert.True(t, HasCash(`[{"method":"Cash","amount":50}]`))
	assert.False(t, HasCash("paymaya"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "GCash", Label("gcash"))
	assert.Equal(t, "PayMaya", Label("PAYMAYA"))
	assert.Equal(t, "Bank Transfer", Label("bank transfer"))
	assert.Equal(t, "Cash", Label("cash"))
}
