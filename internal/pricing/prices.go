package pricing

// Asset describes a quotable collateral symbol: the kind it belongs to and
// its USD unit price. The kind travels with the quote so callers can verify
// a request's declared kind against the symbol's real one.
type Asset struct {
	Kind         CollateralKind
	UnitPriceUsd float64
}

// PriceFeed quotes a collateral symbol.
type PriceFeed interface {
	Quote(symbol string) (Asset, bool)
}

// StaticPrices is the demo asset table the funding flow sizes collateral
// with. No live oracle in the MVP; values match the symbols seeded in the
// borrower UI.
type StaticPrices map[string]Asset

// DefaultPrices returns the built-in demo quotes.
func DefaultPrices() StaticPrices {
	return StaticPrices{
		"HBAR":  {Kind: KindHBAR, UnitPriceUsd: 0.10},
		"JAM":   {Kind: KindToken, UnitPriceUsd: 0.02},
		"USDC":  {Kind: KindToken, UnitPriceUsd: 1.00},
		"GOLD1": {Kind: KindRWA, UnitPriceUsd: 70.00},
	}
}

func (p StaticPrices) Quote(symbol string) (Asset, bool) {
	a, ok := p[symbol]
	return a, ok
}
