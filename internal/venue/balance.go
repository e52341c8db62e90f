package venue

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"hyperexec/pkg/quant"
	"hyperexec/pkg/safe"
)

// Balance tracks one asset of the paper venue's virtual account.
// All amounts are strictly int64 sats.
type Balance struct {
	Symbol       string
	AmountSats   int64
	ReservedSats int64
	UpdatedUnixM int64
}

// AvailableSats returns the spendable amount.
func (b *Balance) AvailableSats() int64 {
	return safe.SafeSub(b.AmountSats, b.ReservedSats)
}

// Credit adds funds.
func (b *Balance) Credit(amountSats, tsUnixM int64) {
	b.AmountSats = safe.SafeAdd(b.AmountSats, amountSats)
	b.UpdatedUnixM = tsUnixM
}

// Debit removes funds. Panics if the balance would go negative; the
// paper venue checks availability before debiting.
func (b *Balance) Debit(amountSats, tsUnixM int64) {
	if b.AvailableSats() < amountSats {
		panic(fmt.Sprintf("BALANCE_DEBIT_INSUFFICIENT: %s need %d have %d",
			b.Symbol, amountSats, b.AvailableSats()))
	}
	b.AmountSats = safe.SafeSub(b.AmountSats, amountSats)
	b.UpdatedUnixM = tsUnixM
}

// Reserve locks funds against a resting order.
func (b *Balance) Reserve(amountSats, tsUnixM int64) {
	b.ReservedSats = safe.SafeAdd(b.ReservedSats, amountSats)
	b.UpdatedUnixM = tsUnixM
	b.VerifyInvariant()
}

// Release unlocks reserved funds.
func (b *Balance) Release(amountSats, tsUnixM int64) {
	b.ReservedSats = safe.SafeSub(b.ReservedSats, amountSats)
	b.UpdatedUnixM = tsUnixM
	b.VerifyInvariant()
}

// VerifyInvariant panics on impossible states.
func (b *Balance) VerifyInvariant() {
	if b.AmountSats < 0 {
		panic(fmt.Sprintf("BALANCE_NEGATIVE: %s %d", b.Symbol, b.AmountSats))
	}
	if b.ReservedSats < 0 || b.ReservedSats > b.AmountSats {
		panic(fmt.Sprintf("BALANCE_RESERVED_INVALID: %s reserved %d of %d",
			b.Symbol, b.ReservedSats, b.AmountSats))
	}
}

// BalanceBook is the per-symbol balance index of the paper venue.
// Not thread-safe on its own; the paper venue serializes access.
type BalanceBook struct {
	balances map[string]*Balance
}

// NewBalanceBook creates an empty book.
func NewBalanceBook() *BalanceBook {
	return &BalanceBook{balances: make(map[string]*Balance)}
}

// Get returns the balance for a symbol, creating it at zero if absent.
func (bb *BalanceBook) Get(symbol string) *Balance {
	b, ok := bb.balances[symbol]
	if !ok {
		b = &Balance{Symbol: symbol}
		bb.balances[symbol] = b
	}
	return b
}

// Snapshot returns a stable copy of all balances, ordered by symbol.
func (bb *BalanceBook) Snapshot() []Balance {
	out := make([]Balance, 0, len(bb.balances))
	for _, b := range bb.balances {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// VerifyAll checks every balance invariant.
func (bb *BalanceBook) VerifyAll() {
	for _, b := range bb.balances {
		b.VerifyInvariant()
	}
}

// TotalEquity values the book in quote units given current marks.
// Symbols without a mark contribute only if they are the quote itself.
func (bb *BalanceBook) TotalEquity(quoteSymbol string, marks map[string]quant.PriceMicros) decimal.Decimal {
	var total decimal.Decimal
	for sym, b := range bb.balances {
		if sym == quoteSymbol {
			total = total.Add(quant.QtySats(b.AmountSats).Decimal())
			continue
		}
		if mark, ok := marks[sym]; ok {
			total = total.Add(quant.Notional(mark, quant.QtySats(b.AmountSats)))
		}
	}
	return total
}
