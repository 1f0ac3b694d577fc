package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auction-house/internal/auctionerrors"
	listing "auction-house/internal/listingService"
	model "auction-house/internal/models"
	"auction-house/services/marketplace/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// topBidsShown bounds the ledger slice returned on the detail page
const topBidsShown = 10

type ListingServiceInterface interface {
	CreateListing(sellerID string, in listing.CreateListingInput) (model.Listing, error)
	GetListing(listingID string) (model.Listing, error)
	GetListingsBySeller(sellerID string) ([]model.Listing, error)
	DeleteListing(ctx context.Context, listingID, requesterID string) error
}

type ListingHandler struct {
	listings ListingServiceInterface
	bids     BiddingServiceInterface
}

func NewListingHandler(listings ListingServiceInterface, bids BiddingServiceInterface) *ListingHandler {
	return &ListingHandler{listings: listings, bids: bids}
}

// CreateListingHandler handles POST /listings
func (h *ListingHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	sellerID := CurrentUser(c)
	l, err := h.listings.CreateListing(sellerID, listing.CreateListingInput{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		ReservePrice:  req.ReservePrice,
		MinIncrement:  req.MinIncrement,
		EndsAt:        req.EndsAt,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateListingHandler: failed to create listing", map[string]any{
			"seller_id": sellerID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewListingResponse(l), "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id": l.ListingID,
		"seller_id":  sellerID,
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *ListingHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	l, err := h.listings.GetListing(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	detail := helpers.ListingDetailResponse{
		Listing: helpers.NewListingResponse(l),
		Bids:    []helpers.BidResponse{},
	}

	bids, err := h.bids.GetBidsForListing(listingID, topBidsShown, model.OrderAmountDesc)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}
	for _, b := range bids {
		detail.Bids = append(detail.Bids, helpers.NewBidResponse(b))
	}

	if highest, err := h.bids.GetHighestBid(listingID); err == nil {
		hb := helpers.NewBidResponse(highest)
		detail.HighestBid = &hb
	}

	minimum, err := h.bids.GetMinimumBid(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}
	detail.MinimumBid = minimum.StringFixed(2)

	ended, err := h.bids.IsEnded(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}
	detail.Ended = ended

	utils.JSONResponse(c, http.StatusOK, detail, "listing retrieved successfully")
}

// GetListingsBySellerHandler handles GET /users/:user_id/listings
func (h *ListingHandler) GetListingsBySellerHandler(c *gin.Context) {
	sellerID := c.Param("user_id")

	listings, err := h.listings.GetListingsBySeller(sellerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingsBySellerHandler: error retrieving listings", map[string]any{"user_id": sellerID, "error": err.Error()})
		return
	}

	resp := make([]helpers.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, helpers.NewListingResponse(l))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "listings retrieved successfully")
}

// DeleteListingHandler handles DELETE /listings/:listing_id
func (h *ListingHandler) DeleteListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	requesterID := CurrentUser(c)

	if err := h.listings.DeleteListing(c.Request.Context(), listingID, requesterID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("DeleteListingHandler: failed to delete listing", map[string]any{
			"listing_id":   listingID,
			"requester_id": requesterID,
			"error":        err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "listing deleted successfully")
	helpers.LogSuccess("DeleteListingHandler", "listing deleted successfully", map[string]any{
		"listing_id":   listingID,
		"requester_id": requesterID,
	})
}
