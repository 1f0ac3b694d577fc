package settlement

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/locker"
	"auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
)

// SettlementService closes listings, exactly once, recording the winning bid.
// It shares the per-listing exclusive section with the bidding engine so a
// settlement cannot race a concurrent bid or a second settlement.
type SettlementService struct {
	repo     repository.AuctionDB
	locks    *locker.KeyedLock
	notifier notify.Notifier
}

// NewSettlementService creates a new SettlementService instance
func NewSettlementService(repo repository.AuctionDB, locks *locker.KeyedLock, notifier notify.Notifier) *SettlementService {
	return &SettlementService{
		repo:     repo,
		locks:    locks,
		notifier: notifier,
	}
}

// AcceptBid lets the seller pick a winning bid and close the listing. The bid
// must belong to the listing; a listing can be settled only once. The winner
// is notified best-effort after the sale has committed.
func (s *SettlementService) AcceptBid(ctx context.Context, listingID, bidID, requesterID string) (models.Bid, error) {
	if listingID == "" || bidID == "" || requesterID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID, bidID or requesterID", auctionerrors.ErrInvalidBid)
	}

	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if l.SellerID != requesterID {
		return models.Bid{}, fmt.Errorf("service: %w - only the seller may accept bids", auctionerrors.ErrForbidden)
	}

	unlock, err := s.locks.Acquire(ctx, listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: %w", err)
	}
	defer unlock()

	// Fresh read inside the section; a concurrent settlement may have landed
	l, err = s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if l.Sold {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.ErrAlreadySold)
	}

	bid, err := s.repo.GetBid(listingID, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get bid %s for listing %s: %w", bidID, listingID, err)
	}

	if err := s.repo.MarkSold(listingID, bidID, time.Now().UTC()); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to settle listing %s: %w", listingID, err)
	}

	notify.LogOnFailure(s.notifier, bid.BidderID, l.SellerID, models.KindBidAccepted,
		fmt.Sprintf("Your bid of %s on '%s' was accepted. The seller will contact you to complete the transaction.",
			bid.Amount.StringFixed(2), l.Title), listingID)

	return bid, nil
}

// Winner reports the winning bid for a listing: the accepted bid if settled,
// otherwise the highest bid once the auction has ended. ErrNoBids is returned
// when no winner exists yet. The listing is never mutated here; a passed end
// time on its own does not settle the auction.
func (s *SettlementService) Winner(listingID string) (models.Bid, error) {
	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}

	if l.AcceptedBidID != "" {
		bid, err := s.repo.GetBid(listingID, l.AcceptedBidID)
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to get accepted bid for listing %s: %w", listingID, err)
		}
		return bid, nil
	}

	if l.IsEnded(time.Now().UTC()) {
		bid, err := s.repo.GetHighestBid(listingID)
		if err != nil {
			return models.Bid{}, fmt.Errorf("service: failed to get highest bid for listing %s: %w", listingID, err)
		}
		return bid, nil
	}

	return models.Bid{}, fmt.Errorf("service: listing %s has no winner yet: %w", listingID, auctionerrors.ErrNoBids)
}

// HasEnded reports whether the listing can no longer take bids because its
// end time has passed or it is sold.
func (s *SettlementService) HasEnded(listingID string) (bool, error) {
	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return l.Sold || l.IsEnded(time.Now().UTC()), nil
}
