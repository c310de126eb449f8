package pricing

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInterest_KnownValues(t *testing.T) {
	// 12% APR, $1000, 12 months -> $120
	if got := Interest(1000, 1200, 12); !almostEqual(got, 120) {
		t.Fatalf("Interest(1000,1200,12) = %v, want 120", got)
	}
	// 9% APR, $5000, 6 months -> $225
	if got := Interest(5000, 900, 6); !almostEqual(got, 225) {
		t.Fatalf("Interest(5000,900,6) = %v, want 225", got)
	}
}

func TestInterest_ZeroInputs(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		aprBps    int
		months    int
	}{
		{"zero principal", 0, 1200, 12},
		{"zero rate", 1000, 0, 12},
		{"zero tenure", 1000, 1200, 0},
	}
	for _, tc := range cases {
		if got := Interest(tc.principal, tc.aprBps, tc.months); got != 0 {
			t.Fatalf("%s: got %v, want 0", tc.name, got)
		}
	}
}

func TestTotalPayoff_IsPrincipalPlusInterest(t *testing.T) {
	for _, tc := range []struct {
		principal float64
		aprBps    int
		months    int
	}{
		{1000, 1200, 12},
		{5000, 900, 6},
		{0, 0, 0},
		{250.50, 475, 3},
	} {
		interest := Interest(tc.principal, tc.aprBps, tc.months)
		if interest < 0 {
			t.Fatalf("negative interest for %+v", tc)
		}
		got := TotalPayoff(tc.principal, tc.aprBps, tc.months)
		if !almostEqual(got, tc.principal+interest) {
			t.Fatalf("TotalPayoff(%+v) = %v, want %v", tc, got, tc.principal+interest)
		}
	}
}

func TestRequiredCollateral(t *testing.T) {
	c := RequiredCollateral(1000, 6000, 0.1)
	if !almostEqual(c.RequiredUsd, 1000/0.6) {
		t.Fatalf("RequiredUsd = %v, want %v", c.RequiredUsd, 1000/0.6)
	}
	if !almostEqual(c.RequiredUnits, 1000/0.6/0.1) {
		t.Fatalf("RequiredUnits = %v, want %v", c.RequiredUnits, 1000/0.6/0.1)
	}
}

func TestRequiredCollateral_ZeroUnitPrice(t *testing.T) {
	c := RequiredCollateral(1000, 6000, 0)
	if c.RequiredUnits != 0 {
		t.Fatalf("RequiredUnits with zero price = %v, want 0", c.RequiredUnits)
	}
	if !almostEqual(c.RequiredUsd, 1000/0.6) {
		t.Fatalf("RequiredUsd must still be sized, got %v", c.RequiredUsd)
	}
}

func TestRemainingLiquidity(t *testing.T) {
	terms := Terms{TotalLiquidityUsd: 50000, TotalBorrowedUsd: 15000}
	if got := terms.RemainingLiquidity(); !almostEqual(got, 35000) {
		t.Fatalf("RemainingLiquidity = %v, want 35000", got)
	}
	// floored at zero even on inconsistent totals
	terms = Terms{TotalLiquidityUsd: 100, TotalBorrowedUsd: 250}
	if got := terms.RemainingLiquidity(); got != 0 {
		t.Fatalf("RemainingLiquidity = %v, want 0", got)
	}
}

func demoTerms() Terms {
	return Terms{
		AprBps:            1200,
		LtvBps:            6000,
		TenureMonths:      []int{3, 6, 12},
		AllowedKinds:      []CollateralKind{KindHBAR, KindToken},
		MinLoanUsd:        100,
		MaxLoanUsd:        10000,
		TotalLiquidityUsd: 50000,
		TotalBorrowedUsd:  45000,
	}
}

func TestValidateRequest_Passes(t *testing.T) {
	if err := demoTerms().ValidateRequest(1000, 6, KindHBAR); err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
}

func TestValidateRequest_FirstFailureWins(t *testing.T) {
	terms := demoTerms()
	cases := []struct {
		name      string
		principal float64
		months    int
		kind      CollateralKind
		want      error
	}{
		// every later check would also fail here; tenure must win
		{"tenure first", 999999, 5, KindRWA, ErrInvalidTenure},
		// kind and range both bad; kind must win
		{"kind before range", 999999, 6, KindRWA, ErrDisallowedCollateral},
		// range and liquidity both bad; range must win
		{"range before liquidity", 99999, 6, KindHBAR, ErrAmountOutOfRange},
		{"below minimum", 50, 6, KindHBAR, ErrAmountOutOfRange},
		// only 5000 left
		{"liquidity last", 6000, 6, KindHBAR, ErrInsufficientLiquidity},
	}
	for _, tc := range cases {
		err := terms.ValidateRequest(tc.principal, tc.months, tc.kind)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestAdjustScoreOnRepay(t *testing.T) {
	if got := AdjustScoreOnRepay(600); got != 620 {
		t.Fatalf("AdjustScoreOnRepay(600) = %d, want 620", got)
	}
	if got := AdjustScoreOnRepay(840); got != 850 {
		t.Fatalf("AdjustScoreOnRepay(840) = %d, want 850 (clamped)", got)
	}
	if got := AdjustScoreOnRepay(850); got != 850 {
		t.Fatalf("AdjustScoreOnRepay(850) = %d, want 850", got)
	}
}

func TestScoreCategory(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{850, "Excellent"}, {750, "Excellent"},
		{749, "Good"}, {650, "Good"},
		{649, "Fair"}, {550, "Fair"},
		{549, "Poor"}, {0, "Poor"},
	}
	for _, tc := range cases {
		if got := ScoreCategory(tc.score); got != tc.want {
			t.Fatalf("ScoreCategory(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	// no hidden state: identical inputs, identical outputs
	if Interest(1234.56, 875, 9) != Interest(1234.56, 875, 9) {
		t.Fatal("Interest not deterministic")
	}
	a := RequiredCollateral(777, 5500, 0.02)
	b := RequiredCollateral(777, 5500, 0.02)
	if a != b {
		t.Fatalf("RequiredCollateral not deterministic: %+v vs %+v", a, b)
	}
}

func TestDefaultPrices(t *testing.T) {
	feed := DefaultPrices()
	if a, ok := feed.Quote("USDC"); !ok || a.UnitPriceUsd != 1.00 || a.Kind != KindToken {
		t.Fatalf("Quote(USDC) = %+v,%v", a, ok)
	}
	if a, ok := feed.Quote("HBAR"); !ok || a.Kind != KindHBAR {
		t.Fatalf("Quote(HBAR) = %+v,%v", a, ok)
	}
	if a, ok := feed.Quote("GOLD1"); !ok || a.Kind != KindRWA {
		t.Fatalf("Quote(GOLD1) = %+v,%v", a, ok)
	}
	if _, ok := feed.Quote("DOGE"); ok {
		t.Fatal("Quote(DOGE) should miss")
	}
}
