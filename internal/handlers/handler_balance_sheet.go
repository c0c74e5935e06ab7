package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	portssvc "github.com/splitclub/split_expense_app/internal/core/ports/services"
	"github.com/splitclub/split_expense_app/internal/dto"
	"github.com/splitclub/split_expense_app/internal/middleware"
)

// balanceSheetHandler handles HTTP requests for per-user balance views.
type balanceSheetHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	userService   portssvc.UserSvcFacade
}

// newBalanceSheetHandler creates a new balanceSheetHandler.
func newBalanceSheetHandler(ls portssvc.LedgerSvcFacade, us portssvc.UserSvcFacade) *balanceSheetHandler {
	return &balanceSheetHandler{
		ledgerService: ls,
		userService:   us,
	}
}

// registerBalanceSheetRoutes registers all balance-sheet routes.
func registerBalanceSheetRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, userService portssvc.UserSvcFacade) {
	h := newBalanceSheetHandler(ledgerService, userService)

	sheets := rg.Group("/balance-sheets")
	{
		sheets.GET("/:userID", h.getBalanceSheet)
		sheets.GET("/:userID/outstanding", h.getOutstandingBalance)
		sheets.GET("/:userID/summary", h.getBalanceSummary)
	}
}

// loadLedger resolves the user and their ledger; a user never touched by an
// expense gets a zero-valued ledger.
func (h *balanceSheetHandler) loadLedger(c *gin.Context) (userID string, ok bool) {
	userID = c.Param("userID")
	if _, err := h.userService.GetUserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return userID, false
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to resolve user for balance sheet", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance sheet"})
		return userID, false
	}
	return userID, true
}

// getBalanceSheet godoc
// @Summary Get a user's balance sheet
// @Description Retrieves the full ledger view: lifetime totals plus every pairwise balance
// @Tags balance-sheets
// @Produce  json
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance sheet"
// @Router /balance-sheets/{userID} [get]
func (h *balanceSheetHandler) getBalanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.loadLedger(c)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get ledger", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance sheet"})
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(ledger))
}

// getOutstandingBalance godoc
// @Summary Get a user's net outstanding position
// @Description Retrieves the net view of a ledger: total owed, total receivable and their difference
// @Tags balance-sheets
// @Produce  json
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.OutstandingBalanceResponse
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Failed to retrieve outstanding balance"
// @Router /balance-sheets/{userID}/outstanding [get]
func (h *balanceSheetHandler) getOutstandingBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := h.loadLedger(c)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get ledger", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve outstanding balance"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOutstandingBalanceResponse(ledger))
}

// getBalanceSummary godoc
// @Summary Get a user's compact balance summary
// @Description Retrieves the user's name and net balance for list views
// @Tags balance-sheets
// @Produce  json
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.UserBalanceSummaryResponse
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance summary"
// @Router /balance-sheets/{userID}/summary [get]
func (h *balanceSheetHandler) getBalanceSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error("Failed to resolve user for balance summary", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance summary"})
		return
	}

	ledger, err := h.ledgerService.GetLedger(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to get ledger", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance summary"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserBalanceSummaryResponse(user, ledger))
}
