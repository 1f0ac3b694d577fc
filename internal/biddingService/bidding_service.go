package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/locker"
	"auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/shopspring/decimal"
)

// BiddingService defines the business logic for auction bidding. All bid
// writes for a listing run inside that listing's exclusive section, so each
// accepted bid is validated against fully committed prior state.
type BiddingService struct {
	repo     repository.AuctionDB
	locks    *locker.KeyedLock
	notifier notify.Notifier
}

// NewBiddingService creates a new BiddingService instance. notifier may be nil
// when the deployment has no notification sink.
func NewBiddingService(repo repository.AuctionDB, locks *locker.KeyedLock, notifier notify.Notifier) *BiddingService {
	return &BiddingService{
		repo:     repo,
		locks:    locks,
		notifier: notifier,
	}
}

// PlaceBid validates and records a user's bid on a listing.
//
// Checks run in a fixed order and the first failure wins with no side
// effects: amount parses positive, listing exists, bidder is not the seller,
// then - inside the listing's exclusive section, against freshly re-read
// state - not sold, not past the end time, and at least the minimum next bid.
// On success the bid row and the listing's current_price commit together.
func (s *BiddingService) PlaceBid(ctx context.Context, listingID, bidderID, amount string) (models.Bid, error) {
	if listingID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or bidderID", auctionerrors.ErrInvalidBid)
	}

	bidAmount, err := decimal.NewFromString(amount)
	if err != nil || !bidAmount.IsPositive() {
		return models.Bid{}, fmt.Errorf("service: %w - amount must be a positive decimal", auctionerrors.ErrInvalidAmount)
	}

	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if l.SellerID == bidderID {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrSelfBid)
	}

	unlock, err := s.locks.Acquire(ctx, listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}
	defer unlock()

	// Re-read inside the section: the listing may have been sold or received
	// bids while this caller waited for the lock.
	l, err = s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if l.Sold {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrAlreadySold)
	}
	// Wall clock is read here, not at request entry
	if l.IsEnded(time.Now().UTC()) {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrAuctionEnded)
	}

	minimum, err := s.minimumNextBid(l)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to compute minimum bid for listing %s: %w", listingID, err)
	}
	if bidAmount.LessThan(minimum) {
		return models.Bid{}, fmt.Errorf("service: %w", &auctionerrors.BidTooLowError{Minimum: minimum})
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    bidAmount,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AppendBid(bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
	}

	notify.LogOnFailure(s.notifier, l.SellerID, bidderID, models.KindBid,
		fmt.Sprintf("New bid of %s on your listing '%s'.", bidAmount.StringFixed(2), l.Title), listingID)

	return bid, nil
}

// minimumNextBid derives the smallest acceptable amount from the ledger:
// highest bid plus the increment, or the starting price when no bids exist.
// The listing's current_price cache is deliberately not consulted.
func (s *BiddingService) minimumNextBid(l models.Listing) (decimal.Decimal, error) {
	highest, err := s.repo.GetHighestBid(l.ListingID)
	if err == nil {
		return highest.Amount.Add(l.MinIncrement), nil
	}
	if errors.Is(err, auctionerrors.ErrNoBids) {
		return l.StartingPrice, nil
	}
	return decimal.Decimal{}, err
}

// GetMinimumBid returns the smallest amount that would be accepted right now
func (s *BiddingService) GetMinimumBid(listingID string) (decimal.Decimal, error) {
	if listingID == "" {
		return decimal.Decimal{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	minimum, err := s.minimumNextBid(l)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("service: failed to compute minimum bid for listing %s: %w", listingID, err)
	}
	return minimum, nil
}

// GetHighestBid returns the highest bid for a listing
func (s *BiddingService) GetHighestBid(listingID string) (models.Bid, error) {
	if listingID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	highest, err := s.repo.GetHighestBid(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
	}
	return highest, nil
}

// GetBidsForListing returns bids for a listing in the requested order
func (s *BiddingService) GetBidsForListing(listingID string, limit int, order models.BidOrder) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByListing(listingID, limit, order)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// GetBidsByBidder returns all bids a user has placed
func (s *BiddingService) GetBidsByBidder(bidderID string) ([]models.Bid, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w - empty bidder ID", auctionerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByBidder(bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for bidder %s: %w", bidderID, err)
	}
	return bids, nil
}

// IsEnded reports whether the listing's end time has passed. A past end time
// only blocks new bids; it does not settle the listing.
func (s *BiddingService) IsEnded(listingID string) (bool, error) {
	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return l.IsEnded(time.Now().UTC()), nil
}
