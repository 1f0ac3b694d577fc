package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	model "auction-house/internal/models"
	"auction-house/services/marketplace/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, listingID, bidderID, amount string) (model.Bid, error)
	GetMinimumBid(listingID string) (decimal.Decimal, error)
	GetHighestBid(listingID string) (model.Bid, error)
	GetBidsForListing(listingID string, limit int, order model.BidOrder) ([]model.Bid, error)
	GetBidsByBidder(bidderID string) ([]model.Bid, error)
	IsEnded(listingID string) (bool, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	bidderID := CurrentUser(c)

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), listingID, bidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		if minimum, ok := helpers.MinimumFromError(err); ok {
			c.JSON(status, gin.H{
				"status":      status,
				"message":     message,
				"error":       err.Error(),
				"minimum_bid": minimum,
			})
		} else {
			utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		}
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"listing_id": listingID,
			"bidder_id":  bidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": bid.ListingID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount.StringFixed(2),
	})
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *BiddingHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	order := model.OrderCreatedAsc
	if c.Query("order") == string(model.OrderAmountDesc) {
		order = model.OrderAmountDesc
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	bids, err := h.service.GetBidsForListing(listingID, limit, order)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByListingHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(resp),
	})
}

// GetHighestBidHandler handles GET /listings/:listing_id/highest
func (h *BiddingHandler) GetHighestBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bid, err := h.service.GetHighestBid(listingID)
	if err != nil {
		// No highest bid on an existing listing -> 404
		status, message := helpers.MapErrorToHTTP(err)
		if status == http.StatusOK {
			status, message = http.StatusNotFound, "no bids placed yet"
		}
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Info("GetHighestBidHandler: no highest bid", map[string]any{"listing_id": listingID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "highest bid retrieved successfully")
}

// GetMinimumBidHandler handles GET /listings/:listing_id/minimum
func (h *BiddingHandler) GetMinimumBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	minimum, err := h.service.GetMinimumBid(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetMinimumBidHandler: error computing minimum", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	ended, err := h.service.IsEnded(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"listing_id":  listingID,
		"minimum_bid": minimum.StringFixed(2),
		"ended":       ended,
	}, "minimum bid retrieved successfully")
}

// GetBidsByBidderHandler handles GET /users/:user_id/bids
func (h *BiddingHandler) GetBidsByBidderHandler(c *gin.Context) {
	bidderID := c.Param("user_id")

	bids, err := h.service.GetBidsByBidder(bidderID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByBidderHandler: error retrieving bids", map[string]any{"user_id": bidderID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
}
