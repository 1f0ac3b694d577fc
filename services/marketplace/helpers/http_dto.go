package helpers

import (
	"time"

	model "auction-house/internal/models"
)

// Request/Response DTOs. Money crosses the wire as strings and is parsed by
// the services.

type CreateListingRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	StartingPrice string     `json:"starting_price" binding:"required"`
	ReservePrice  string     `json:"reserve_price"`
	MinIncrement  string     `json:"min_increment"`
	EndsAt        *time.Time `json:"ends_at"`
}

type PlaceBidRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	ListingID string `json:"listing_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type ListingResponse struct {
	ListingID     string  `json:"listing_id"`
	SellerID      string  `json:"seller_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	StartingPrice string  `json:"starting_price"`
	ReservePrice  *string `json:"reserve_price,omitempty"`
	MinIncrement  string  `json:"min_increment"`
	EndsAt        *string `json:"ends_at,omitempty"`
	CurrentPrice  *string `json:"current_price,omitempty"`
	Sold          bool    `json:"sold"`
	AcceptedBidID string  `json:"accepted_bid_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// ListingDetailResponse is the read model for a listing page: the listing,
// its top bids, and the derived bidding state.
type ListingDetailResponse struct {
	Listing    ListingResponse `json:"listing"`
	Bids       []BidResponse   `json:"bids"`
	HighestBid *BidResponse    `json:"highest_bid,omitempty"`
	MinimumBid string          `json:"minimum_bid"`
	Ended      bool            `json:"ended"`
}

type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
}

// NewBidResponse converts a bid model to its wire shape
func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.BidID,
		ListingID: b.ListingID,
		BidderID:  b.BidderID,
		Amount:    b.Amount.StringFixed(2),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewListingResponse converts a listing model to its wire shape
func NewListingResponse(l model.Listing) ListingResponse {
	resp := ListingResponse{
		ListingID:     l.ListingID,
		SellerID:      l.SellerID,
		Title:         l.Title,
		Description:   l.Description,
		StartingPrice: l.StartingPrice.StringFixed(2),
		MinIncrement:  l.MinIncrement.StringFixed(2),
		Sold:          l.Sold,
		AcceptedBidID: l.AcceptedBidID,
		CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.ReservePrice != nil {
		rp := l.ReservePrice.StringFixed(2)
		resp.ReservePrice = &rp
	}
	if l.CurrentPrice != nil {
		cp := l.CurrentPrice.StringFixed(2)
		resp.CurrentPrice = &cp
	}
	if l.EndsAt != nil {
		ea := l.EndsAt.UTC().Format(time.RFC3339)
		resp.EndsAt = &ea
	}
	return resp
}
