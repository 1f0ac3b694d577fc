package handler

import (
	"context"
	"fmt"
	"net/http"

	model "auction-house/internal/models"
	"auction-house/services/marketplace/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type SettlementServiceInterface interface {
	AcceptBid(ctx context.Context, listingID, bidID, requesterID string) (model.Bid, error)
	Winner(listingID string) (model.Bid, error)
}

type SettlementHandler struct {
	service SettlementServiceInterface
}

func NewSettlementHandler(service SettlementServiceInterface) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// AcceptBidHandler handles POST /listings/:listing_id/bids/:bid_id/accept
func (h *SettlementHandler) AcceptBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bidID := c.Param("bid_id")
	requesterID := CurrentUser(c)

	bid, err := h.service.AcceptBid(c.Request.Context(), listingID, bidID, requesterID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("AcceptBidHandler: failed to accept bid", map[string]any{
			"listing_id":   listingID,
			"bid_id":       bidID,
			"requester_id": requesterID,
			"error":        err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "bid accepted successfully")
	helpers.LogSuccess("AcceptBidHandler", "bid accepted successfully", map[string]any{
		"listing_id": listingID,
		"bid_id":     bid.BidID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// GetWinnerHandler handles GET /listings/:listing_id/winner
func (h *SettlementHandler) GetWinnerHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bid, err := h.service.Winner(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		if status == http.StatusOK {
			status, message = http.StatusNotFound, "no winner yet"
		}
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Info("GetWinnerHandler: no winner", map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "winner retrieved successfully")
}
