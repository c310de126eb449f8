package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	walletConnect bool
}

func NewHandler(walletConnect bool) *Handler {
	return &Handler{walletConnect: walletConnect}
}

// Health also advertises whether the wallet-connect flow is enabled so the
// client can decide which signing path to offer.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"time":           time.Now().UTC().Format(time.RFC3339Nano),
		"wallet_connect": h.walletConnect,
	})
}
