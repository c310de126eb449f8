package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	borrowerDomain "credora-backend/internal/domain/borrower"
	loanDomain "credora-backend/internal/domain/loan"
	poolDomain "credora-backend/internal/domain/pool"
	"credora-backend/internal/pricing"
	borrowerUC "credora-backend/internal/usecase/borrower"
	loanUC "credora-backend/internal/usecase/loan"
	poolUC "credora-backend/internal/usecase/pool"
)

// HeaderActorID identifies the acting account on every request. Identity is
// explicit per request; there is no session state and no real authentication
// in the MVP.
const HeaderActorID = "Ax-Actor-Id"

func actorID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
	return id, reHex32.MatchString(id)
}

// statusFor maps domain errors onto HTTP codes. Pricing validation errors
// are user-correctable input, surfaced verbatim.
func statusFor(err error) int {
	switch {
	case errors.Is(err, poolDomain.ErrNotFound),
		errors.Is(err, loanDomain.ErrNotFound),
		errors.Is(err, borrowerDomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrInvalidTenure),
		errors.Is(err, pricing.ErrDisallowedCollateral),
		errors.Is(err, pricing.ErrAmountOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pricing.ErrInsufficientLiquidity),
		errors.Is(err, loanDomain.ErrAlreadyRepaid),
		errors.Is(err, loanDomain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, loanDomain.ErrNotBorrower),
		errors.Is(err, borrowerDomain.ErrWrongRole),
		errors.Is(err, poolUC.ErrNotLender):
		return http.StatusForbidden
	case errors.Is(err, loanUC.ErrInvalidInput),
		errors.Is(err, loanUC.ErrUnknownSymbol),
		errors.Is(err, borrowerUC.ErrInvalidRole):
		return http.StatusBadRequest
	}
	// pool invariant violations are 400s too
	for _, e := range []error{
		poolUC.ErrInvalidApr, poolUC.ErrInvalidLtv, poolUC.ErrNoTenures,
		poolUC.ErrInvalidTenures, poolUC.ErrNoCollateralKinds,
		poolUC.ErrUnknownKind, poolUC.ErrBadLoanRange, poolUC.ErrBadLiquidity,
	} {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
