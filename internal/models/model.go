package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a participant in the marketplace
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Listing represents an auction-style listing users can bid on
type Listing struct {
	ListingID     string           `json:"listing_id"`
	SellerID      string           `json:"seller_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	ReservePrice  *decimal.Decimal `json:"reserve_price,omitempty"` // stored for the seller, never read by bid validation
	MinIncrement  decimal.Decimal  `json:"min_increment"`
	EndsAt        *time.Time       `json:"ends_at,omitempty"`
	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"` // denormalized cache of the last accepted amount; written only together with the bid insert
	Sold          bool             `json:"sold"`
	AcceptedBidID string           `json:"accepted_bid_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// IsEnded reports whether the auction end time has passed at the given instant
func (l Listing) IsEnded(now time.Time) bool {
	return l.EndsAt != nil && !now.Before(*l.EndsAt)
}

// Bid represents a user's bid on a listing
type Bid struct {
	BidID     string          `json:"bid_id"`
	ListingID string          `json:"listing_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// BidOrder selects the ordering for ledger queries
type BidOrder string

const (
	// OrderAmountDesc orders by amount descending, earliest first on ties (leaderboard)
	OrderAmountDesc BidOrder = "amount"
	// OrderCreatedAsc orders by creation time ascending (audit trail)
	OrderCreatedAsc BidOrder = "time"
)

// NotificationKind classifies marketplace notifications
type NotificationKind string

const (
	KindPurchase    NotificationKind = "purchase"
	KindBid         NotificationKind = "bid"
	KindBidAccepted NotificationKind = "bid_accepted"
)

// Notification represents a message delivered to a user about a marketplace event
type Notification struct {
	NotificationID string           `json:"notification_id"`
	RecipientID    string           `json:"recipient_id"`
	SenderID       string           `json:"sender_id"`
	Kind           NotificationKind `json:"kind"`
	Message        string           `json:"message"`
	ListingID      string           `json:"listing_id,omitempty"`
	Read           bool             `json:"read"`
	CreatedAt      time.Time        `json:"created_at"`
}
