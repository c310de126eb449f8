package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	borrowerDomain "credora-backend/internal/domain/borrower"
	loanDomain "credora-backend/internal/domain/loan"
	poolDomain "credora-backend/internal/domain/pool"
	"credora-backend/internal/domain/uow"
	"credora-backend/internal/pricing"
	"credora-backend/internal/testutil/accountmock"
	"credora-backend/internal/testutil/loanmock"
	"credora-backend/internal/testutil/poolmock"
	"credora-backend/internal/testutil/uowmock"
	uc "credora-backend/internal/usecase/loan"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

var (
	testPoolID     = strings.Repeat("d", 32)
	testBorrowerID = strings.Repeat("b", 32)
	testLoanID     = strings.Repeat("a", 32)
)

func fundTestPool() *poolDomain.Pool {
	return &poolDomain.Pool{
		PoolID:            testPoolID,
		Name:              "Helix Yield Pool",
		AprBps:            1200,
		LtvBps:            6000,
		TenureMonths:      []int{6, 12},
		AllowedKinds:      []pricing.CollateralKind{pricing.KindHBAR, pricing.KindToken},
		MinLoanUsd:        100,
		MaxLoanUsd:        10000,
		TotalLiquidityUsd: 50000,
		TotalBorrowedUsd:  45000,
	}
}

func fundTestHandler(pools *poolmock.Repo, loans *loanmock.Repo, accounts *accountmock.Repo) *LoanHandler {
	repos := uow.Repos{Pools: pools, Loans: loans, Accounts: accounts}
	tx := uowmock.Passthrough(repos, func(loanID string) (*loanDomain.Loan, error) {
		return loans.GetByLoanIDForUpdate(context.Background(), loanID)
	})
	return NewLoanHandler(uc.NewUsecase(loans, tx, pricing.DefaultPrices()))
}

// -------- tests --------

func TestFundLoan_Success(t *testing.T) {
	e := newEchoWithValidator()

	var created *loanDomain.Loan
	pools := &poolmock.Repo{
		GetByPoolIDFn: func(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
			return fundTestPool(), nil
		},
		ReserveLiquidityFn: func(ctx context.Context, poolID string, amountUsd float64) error {
			return nil
		},
	}
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *loanDomain.Loan) error {
			created = l
			return nil
		},
	}
	accounts := &accountmock.Repo{
		GetByAccountIDFn: func(ctx context.Context, accountID string) (*borrowerDomain.Account, error) {
			return &borrowerDomain.Account{
				AccountID:   accountID,
				DisplayName: "Ravi",
				Role:        borrowerDomain.RoleBorrower,
				CreditScore: 720,
			}, nil
		},
	}
	h := fundTestHandler(pools, loans, accounts)

	reqBody := map[string]any{
		"pool_id":           testPoolID,
		"principal_usd":     1000,
		"tenure_months":     12,
		"collateral_kind":   "HBAR",
		"collateral_symbol": "HBAR",
		"collateral_link":   "https://hashscan.io/mainnet/account/0.0.1234",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.PoolID != testPoolID || got.BorrowerID != testBorrowerID {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != string(loanDomain.StatusActive) {
		t.Fatalf("status = %s, want ACTIVE", got.Status)
	}
	if got.InterestUsd != 120 || got.TotalPayoffUsd != 1120 {
		t.Fatalf("interest = %v payoff = %v, want 120/1120", got.InterestUsd, got.TotalPayoffUsd)
	}
	if created == nil || created.Collateral.RequiredUsd == 0 {
		t.Fatalf("expected persisted loan with sized collateral, got %+v", created)
	}
}

func TestFundLoan_MissingActorHeader(t *testing.T) {
	e := newEchoWithValidator()
	h := fundTestHandler(&poolmock.Repo{}, &loanmock.Repo{}, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(map[string]any{}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, HeaderActorID) {
		t.Fatalf("error = %q, want mention of %s", er.Error, HeaderActorID)
	}
}

func TestFundLoan_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := fundTestHandler(&poolmock.Repo{}, &loanmock.Repo{}, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", strings.NewReader(`{"pool_id":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestFundLoan_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := fundTestHandler(&poolmock.Repo{}, &loanmock.Repo{}, &accountmock.Repo{})

	// invalid: pool_id not hex32, principal with sub-cent precision, bad kind, bad link
	reqBody := map[string]any{
		"pool_id":           "NOT_HEX_32",
		"principal_usd":     1000.005,
		"tenure_months":     12,
		"collateral_kind":   "STOCK",
		"collateral_symbol": "HBAR",
		"collateral_link":   "not-a-url",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "PoolID", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "PrincipalUsd", "at most 2 decimal places") {
		t.Fatalf("missing dec2 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "CollateralKind", "HBAR, TOKEN, RWA") {
		t.Fatalf("missing kind detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "CollateralLink", "valid URL") {
		t.Fatalf("missing url detail: %+v", er.Details)
	}
}

func TestFundLoan_InsufficientLiquidityConflict(t *testing.T) {
	e := newEchoWithValidator()

	pools := &poolmock.Repo{
		GetByPoolIDFn: func(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
			return fundTestPool(), nil
		},
		ReserveLiquidityFn: func(ctx context.Context, poolID string, amountUsd float64) error {
			// a concurrent funding won the remaining liquidity
			return pricing.ErrInsufficientLiquidity
		},
	}
	accounts := &accountmock.Repo{
		GetByAccountIDFn: func(ctx context.Context, accountID string) (*borrowerDomain.Account, error) {
			return &borrowerDomain.Account{AccountID: accountID, Role: borrowerDomain.RoleBorrower, CreditScore: 720}, nil
		},
	}
	h := fundTestHandler(pools, &loanmock.Repo{}, accounts)

	reqBody := map[string]any{
		"pool_id":           testPoolID,
		"principal_usd":     4000,
		"tenure_months":     12,
		"collateral_kind":   "HBAR",
		"collateral_symbol": "HBAR",
		"collateral_link":   "https://hashscan.io/mainnet/account/0.0.1234",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestFundLoan_TenureRejected(t *testing.T) {
	e := newEchoWithValidator()

	pools := &poolmock.Repo{
		GetByPoolIDFn: func(ctx context.Context, poolID string) (*poolDomain.Pool, error) {
			return fundTestPool(), nil
		},
	}
	accounts := &accountmock.Repo{
		GetByAccountIDFn: func(ctx context.Context, accountID string) (*borrowerDomain.Account, error) {
			return &borrowerDomain.Account{AccountID: accountID, Role: borrowerDomain.RoleBorrower, CreditScore: 720}, nil
		},
	}
	h := fundTestHandler(pools, &loanmock.Repo{}, accounts)

	reqBody := map[string]any{
		"pool_id":           testPoolID,
		"principal_usd":     1000,
		"tenure_months":     9, // pool offers 6 or 12
		"collateral_kind":   "HBAR",
		"collateral_symbol": "HBAR",
		"collateral_link":   "https://hashscan.io/mainnet/account/0.0.1234",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/loans", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FundLoan(c); err != nil {
		t.Fatalf("FundLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != pricing.ErrInvalidTenure.Error() {
		t.Fatalf("error = %q, want %q", er.Error, pricing.ErrInvalidTenure.Error())
	}
}

func TestRepayLoan_Success(t *testing.T) {
	e := newEchoWithValidator()

	active := &loanDomain.Loan{
		LoanID:            testLoanID,
		PoolID:            testPoolID,
		BorrowerID:        testBorrowerID,
		PrincipalUsd:      1000,
		AprBps:            1200,
		TenureMonths:      12,
		Status:            loanDomain.StatusActive,
		CreditScoreBefore: 720,
		CreditScoreAfter:  720,
		FundedAt:          time.Now().UTC(),
	}
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			return active, nil
		},
		SaveFn: func(ctx context.Context, l *loanDomain.Loan) error { return nil },
	}
	accounts := &accountmock.Repo{
		GetByAccountIDForUpdateFn: func(ctx context.Context, accountID string) (*borrowerDomain.Account, error) {
			return &borrowerDomain.Account{AccountID: accountID, Role: borrowerDomain.RoleBorrower, CreditScore: 720}, nil
		},
		SaveFn: func(ctx context.Context, a *borrowerDomain.Account) error { return nil },
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, accounts)

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+testLoanID+"/repay", nil)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.RepayLoan(c); err != nil {
		t.Fatalf("RepayLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != string(loanDomain.StatusRepaid) {
		t.Fatalf("status = %s, want REPAID", got.Status)
	}
	if got.CreditScoreAfter != 740 {
		t.Fatalf("credit_score_after = %d, want 740", got.CreditScoreAfter)
	}
	if got.RepaidAt == nil {
		t.Fatalf("expected repaid_at to be set")
	}
}

func TestRepayLoan_WrongBorrowerForbidden(t *testing.T) {
	e := newEchoWithValidator()

	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			return &loanDomain.Loan{
				LoanID:     testLoanID,
				BorrowerID: testBorrowerID,
				Status:     loanDomain.StatusActive,
			}, nil
		},
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+testLoanID+"/repay", nil)
	req.Header.Set(HeaderActorID, strings.Repeat("c", 32)) // someone else
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.RepayLoan(c); err != nil {
		t.Fatalf("RepayLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRepayLoan_AlreadyRepaidConflict(t *testing.T) {
	e := newEchoWithValidator()

	repaidAt := time.Now().UTC()
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			return &loanDomain.Loan{
				LoanID:     testLoanID,
				BorrowerID: testBorrowerID,
				Status:     loanDomain.StatusRepaid,
				RepaidAt:   &repaidAt,
			}, nil
		},
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/loans/"+testLoanID+"/repay", nil)
	req.Header.Set(HeaderActorID, testBorrowerID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.RepayLoan(c); err != nil {
		t.Fatalf("RepayLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != loanDomain.ErrAlreadyRepaid.Error() {
		t.Fatalf("error = %q, want %q", er.Error, loanDomain.ErrAlreadyRepaid.Error())
	}
}

func TestGetLoan_Success(t *testing.T) {
	e := echo.New()

	loans := &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			if loanID != testLoanID {
				return nil, loanDomain.ErrNotFound
			}
			return &loanDomain.Loan{
				LoanID:       loanID,
				PoolID:       testPoolID,
				BorrowerID:   testBorrowerID,
				PrincipalUsd: 1000,
				AprBps:       1200,
				TenureMonths: 12,
				Status:       loanDomain.StatusActive,
				FundedAt:     time.Now().UTC(),
			}, nil
		},
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/"+testLoanID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues(testLoanID)

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.LoanID != testLoanID {
		t.Fatalf("loan_id = %s, want %s", dto.LoanID, testLoanID)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	e := echo.New()
	loans := &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
			return nil, loanDomain.ErrNotFound
		},
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans/xxx", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("loan_id")
	c.SetParamValues("xxx")

	if err := h.GetLoan(c); err != nil {
		t.Fatalf("GetLoan error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListLoans_FiltersByBorrower(t *testing.T) {
	e := echo.New()
	loans := &loanmock.Repo{
		ListFn: func(ctx context.Context, borrowerID string) ([]loanDomain.Loan, error) {
			if borrowerID != testBorrowerID {
				t.Fatalf("borrower filter = %q, want %q", borrowerID, testBorrowerID)
			}
			return []loanDomain.Loan{{LoanID: testLoanID, BorrowerID: borrowerID, Status: loanDomain.StatusActive}}, nil
		},
	}
	h := fundTestHandler(&poolmock.Repo{}, loans, &accountmock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/loans?borrower_id="+testBorrowerID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListLoans(c); err != nil {
		t.Fatalf("ListLoans error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(out) != 1 || out[0].LoanID != testLoanID {
		t.Fatalf("unexpected list: %+v", out)
	}
}
