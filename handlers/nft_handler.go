package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"github.com/Lead-Studios/veritix-backend-sub009/internal/services"
	"github.com/Lead-Studios/veritix-backend-sub009/internal/status"
)

type NFTHandler struct {
	app       *pocketbase.PocketBase
	lifecycle *services.LifecycleService
}

func NewNFTHandler(app *pocketbase.PocketBase, lifecycle *services.LifecycleService) *NFTHandler {
	return &NFTHandler{
		app:       app,
		lifecycle: lifecycle,
	}
}

// MintTicket - Create a ticket asset and mint it when auto-mint applies
func (h *NFTHandler) MintTicket(e *core.RequestEvent) error {
	var req services.MintRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.EventID == "" || req.PurchaserID == "" {
		return apis.NewBadRequestError("event_id and purchaser_id are required", nil)
	}

	ticket, err := h.lifecycle.MintTicket(e.Request.Context(), &req)
	if err != nil {
		// A platform failure still produced a retryable record; return it
		// alongside the error detail.
		if ticket != nil && errors.Is(err, status.ErrPlatformFailure) {
			return e.JSON(http.StatusBadGateway, map[string]any{
				"ticket": ticket,
				"error":  err.Error(),
			})
		}
		return lifecycleError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{"ticket": ticket})
}

// RetryMinting - Re-run the minting pipeline for a failed ticket
func (h *NFTHandler) RetryMinting(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.lifecycle.RetryMinting(e.Request.Context(), ticketID)
	if err != nil {
		if ticket != nil && errors.Is(err, status.ErrPlatformFailure) {
			return e.JSON(http.StatusBadGateway, map[string]any{
				"ticket": ticket,
				"error":  err.Error(),
			})
		}
		return lifecycleError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// TransferTicket - Move ownership of a minted asset
func (h *NFTHandler) TransferTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		ToAddress   string `json:"to_address"`
		ResalePrice string `json:"resale_price,omitempty"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.ToAddress == "" {
		return apis.NewBadRequestError("to_address is required", nil)
	}

	var resalePrice *decimal.Decimal
	if req.ResalePrice != "" {
		price, err := decimal.NewFromString(req.ResalePrice)
		if err != nil {
			return apis.NewBadRequestError("Invalid resale_price", err)
		}
		resalePrice = &price
	}

	txRef, err := h.lifecycle.TransferTicket(e.Request.Context(), ticketID, req.ToAddress, resalePrice)
	if err != nil {
		return lifecycleError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Ticket transferred successfully",
		"tx_ref":  txRef,
	})
}

// BurnTicket - Permanently retire a minted asset
func (h *NFTHandler) BurnTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		OwnerAddress string `json:"owner_address"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.OwnerAddress == "" {
		return apis.NewBadRequestError("owner_address is required", nil)
	}

	txRef, err := h.lifecycle.BurnTicket(e.Request.Context(), ticketID, req.OwnerAddress)
	if err != nil {
		return lifecycleError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Ticket burned successfully",
		"tx_ref":  txRef,
	})
}

// GetTicket - Fetch a single ticket asset
func (h *NFTHandler) GetTicket(e *core.RequestEvent) error {
	ticket, err := h.lifecycle.GetTicketAsset(e.Request.Context(), e.Request.PathValue("ticketId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// GetEventNFTs - List all ticket assets of an event
func (h *NFTHandler) GetEventNFTs(e *core.RequestEvent) error {
	tickets, err := h.lifecycle.ListByEvent(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// GetPurchaserNFTs - List all ticket assets held by a purchaser
func (h *NFTHandler) GetPurchaserNFTs(e *core.RequestEvent) error {
	tickets, err := h.lifecycle.ListByPurchaser(e.Request.Context(), e.Request.PathValue("purchaserId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// GetMintingStats - Per-event status breakdown
func (h *NFTHandler) GetMintingStats(e *core.RequestEvent) error {
	stats, err := h.lifecycle.GetMintingStats(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"stats": stats})
}

// EstimateMintFee - Current mint cost on the event's platform
func (h *NFTHandler) EstimateMintFee(e *core.RequestEvent) error {
	estimate, err := h.lifecycle.EstimateMintFee(e.Request.Context(), e.Request.PathValue("eventId"))
	if err != nil {
		return lifecycleError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"estimate": estimate})
}

// lifecycleError maps the service error taxonomy onto API errors.
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError(err.Error(), err)
	case errors.Is(err, status.ErrPolicyViolation):
		return apis.NewForbiddenError(err.Error(), err)
	case errors.Is(err, status.ErrInvalidState):
		return apis.NewApiError(http.StatusConflict, err.Error(), err)
	case errors.Is(err, status.ErrMetadataInvalid):
		return apis.NewApiError(http.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, status.ErrPlatformFailure):
		return apis.NewApiError(http.StatusBadGateway, err.Error(), err)
	default:
		return apis.NewBadRequestError(err.Error(), err)
	}
}
