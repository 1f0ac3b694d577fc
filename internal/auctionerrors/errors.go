package auctionerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBidNotFound     = errors.New("bid not found for listing")
	ErrNoBids          = errors.New("no bids found for listing")
	ErrHasBids         = errors.New("listing has existing bids")
)

// business logic errors
var (
	ErrInvalidListing = errors.New("invalid listing details")
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidAmount  = errors.New("invalid bid amount")
	ErrSelfBid        = errors.New("cannot bid on own listing")
	ErrAlreadySold    = errors.New("listing already sold")
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrForbidden      = errors.New("operation not permitted")
	ErrBusy           = errors.New("listing is busy, try again")
)

// BidTooLowError carries the minimum acceptable amount so callers can show it.
// It unwraps to ErrBidTooLow for errors.Is checks.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid amount too low: minimum bid is %s", e.Minimum.StringFixed(2))
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
