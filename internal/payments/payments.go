// Package payments normalises the payment-method field stored on sales.
//
// Historical rows carry a single method name ("Cash"); current rows carry a
// JSON array of {method, amount} pairs for split payments. Both encodings stay
// readable forever because old rows are never migrated. This package is the
// only place that inspects the raw field; everything else works with Entry
// values.
package payments

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonical method names used for bucketing. Matching is case-insensitive.
const (
	MethodCash         = "cash"
	MethodGCash        = "gcash"
	MethodCard         = "card"
	MethodPayMaya      = "paymaya"
	MethodBankTransfer = "bank transfer"
)

// Entry is one payment applied to a sale. A nil Amount means "the full sale
// total": legacy single-method rows never recorded a split amount.
type Entry struct {
	Method string   `json:"method"`
	Amount *float64 `json:"amount"`
}

// Parse interprets the raw stored field. A valid JSON non-empty array is the
// split-payment format and is returned as-is. Anything else, including
// unparseable input, degrades to a single legacy entry with a nil amount.
// Empty input yields nil.
func Parse(raw string) []Entry {
	if raw == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil && len(entries) > 0 {
		return entries
	}
	return []Entry{{Method: raw, Amount: nil}}
}

// Encode serialises split entries back into the stored representation.
// A single entry with a nil amount round-trips to the bare method string so
// legacy-style rows stay in legacy form.
func Encode(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	if len(entries) == 1 && entries[0].Amount == nil {
		return entries[0].Method
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return entries[0].Method
	}
	return string(raw)
}

// Totals accumulates per-method amounts across sales.
type Totals struct {
	Cash         float64 `json:"cash"`
	GCash        float64 `json:"gcash"`
	Card         float64 `json:"card"`
	PayMaya      float64 `json:"paymaya"`
	BankTransfer float64 `json:"bankTransfer"`
	Other        float64 `json:"other"`
}

// Add buckets one sale's payments into the totals. Entries without an explicit
// amount contribute the sale total.
func (t *Totals) Add(mop string, total float64) {
	for _, entry := range Parse(mop) {
		amount := total
		if entry.Amount != nil {
			amount = *entry.Amount
		}
		switch strings.ToLower(strings.TrimSpace(entry.Method)) {
		case MethodCash:
			t.Cash += amount
		case MethodGCash:
			t.GCash += amount
		case MethodCard:
			t.Card += amount
		case MethodPayMaya:
			t.PayMaya += amount
		case MethodBankTransfer:
			t.BankTransfer += amount
		default:
			t.Other += amount
		}
	}
}

// HasCash reports whether any component of the payment is cash.
func HasCash(mop string) bool {
	for _, entry := range Parse(mop) {
		if strings.EqualFold(strings.TrimSpace(entry.Method), MethodCash) {
			return true
		}
	}
	return false
}

// CashAmount returns the cash portion of a sale. Legacy cash rows count the
// full sale total.
func CashAmount(mop string, total float64) float64 {
	var cash float64
	for _, entry := range Parse(mop) {
		if !strings.EqualFold(strings.TrimSpace(entry.Method), MethodCash) {
			continue
		}
		if entry.Amount != nil {
			cash += *entry.Amount
		} else {
			cash += total
		}
	}
	return cash
}

// NonCashAmount returns the remainder of the sale total not settled in cash.
func NonCashAmount(mop string, total float64) float64 {
	return total - CashAmount(mop, total)
}

var titleCaser = cases.Title(language.English)

// Label renders a method name for display ("gcash" stays branded as "GCash").
func Label(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case MethodGCash:
		return "GCash"
	case MethodPayMaya:
		return "PayMaya"
	default:
		return titleCaser.String(strings.TrimSpace(method))
	}
}
