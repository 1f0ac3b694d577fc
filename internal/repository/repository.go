package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// AuctionDB defines the listing and bid storage interface for the marketplace.
// Individual operations are atomic; AppendBid commits the bid row together
// with the listing's denormalized current_price, and MarkSold commits the sold
// flag together with the accepted bid reference.
type AuctionDB interface {
	CreateListing(listing model.Listing) error
	GetListing(listingID string) (model.Listing, error)
	GetListingsBySeller(sellerID string) ([]model.Listing, error)
	DeleteListing(listingID string) error
	AppendBid(bid model.Bid) error
	MarkSold(listingID, bidID string, at time.Time) error
	GetBid(listingID, bidID string) (model.Bid, error)
	GetBidsByListing(listingID string, limit int, order model.BidOrder) ([]model.Bid, error)
	GetBidsByBidder(bidderID string) ([]model.Bid, error)
	GetHighestBid(listingID string) (model.Bid, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu       sync.RWMutex
	listings map[string]model.Listing // key: listingID
	bids     map[string][]model.Bid   // key: listingID -> bids in insertion order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings: make(map[string]model.Listing),
		bids:     make(map[string][]model.Bid),
	}
}

// CreateListing stores a new listing
func (r *MemoryRepo) CreateListing(listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[listing.ListingID] = listing
	return nil
}

// GetListing returns a listing by id
func (r *MemoryRepo) GetListing(listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// GetListingsBySeller returns all listings created by a seller, newest first
func (r *MemoryRepo) GetListingsBySeller(sellerID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var listings []model.Listing
	for _, l := range r.listings {
		if l.SellerID == sellerID {
			listings = append(listings, l)
		}
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

// DeleteListing removes a listing. It fails with ErrHasBids while the ledger
// for the listing is non-empty; bids are never deleted through this path.
func (r *MemoryRepo) DeleteListing(listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listingID]; !ok {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if len(r.bids[listingID]) > 0 {
		return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrHasBids)
	}

	delete(r.listings, listingID)
	return nil
}

// AppendBid records a bid and updates the listing's denormalized current_price
// under the same lock, so both writes land together or not at all.
func (r *MemoryRepo) AppendBid(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[bid.ListingID]
	if !ok {
		return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Sold {
		return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, auctionerrors.ErrAlreadySold)
	}

	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)

	amount := bid.Amount
	listing.CurrentPrice = &amount
	listing.UpdatedAt = bid.CreatedAt
	r.listings[bid.ListingID] = listing

	return nil
}

// MarkSold closes a listing, recording the accepted bid. A nil-equivalent
// empty bidID is rejected; the bid must belong to the listing.
func (r *MemoryRepo) MarkSold(listingID, bidID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("mark listing %s sold: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Sold {
		return fmt.Errorf("mark listing %s sold: %w", listingID, auctionerrors.ErrAlreadySold)
	}
	if _, err := r.findBid(listingID, bidID); err != nil {
		return fmt.Errorf("mark listing %s sold: %w", listingID, err)
	}

	listing.Sold = true
	listing.AcceptedBidID = bidID
	listing.UpdatedAt = at
	r.listings[listingID] = listing

	return nil
}

// GetBid returns a bid by id, verifying it belongs to the stated listing
func (r *MemoryRepo) GetBid(listingID, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.findBid(listingID, bidID)
}

// findBid looks up a bid while the caller holds the lock
func (r *MemoryRepo) findBid(listingID, bidID string) (model.Bid, error) {
	for _, b := range r.bids[listingID] {
		if b.BidID == bidID {
			return b, nil
		}
	}
	return model.Bid{}, fmt.Errorf("get bid %s for listing %s: %w", bidID, listingID, auctionerrors.ErrBidNotFound)
}

// GetBidsByListing returns bids for a listing in the requested order. A limit
// of 0 or less returns the full ledger.
func (r *MemoryRepo) GetBidsByListing(listingID string, limit int, order model.BidOrder) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	bids := append([]model.Bid(nil), r.bids[listingID]...)
	switch order {
	case model.OrderAmountDesc:
		sort.SliceStable(bids, func(i, j int) bool {
			if !bids[i].Amount.Equal(bids[j].Amount) {
				return bids[i].Amount.GreaterThan(bids[j].Amount)
			}
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		})
	default: // OrderCreatedAsc, insertion order is creation order
		sort.SliceStable(bids, func(i, j int) bool {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		})
	}

	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}
	return bids, nil
}

// GetBidsByBidder returns all bids a user has placed, newest first
func (r *MemoryRepo) GetBidsByBidder(bidderID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bids []model.Bid
	for _, listingBids := range r.bids {
		for _, b := range listingBids {
			if b.BidderID == bidderID {
				bids = append(bids, b)
			}
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids, nil
}

// GetHighestBid returns the highest bid for a listing, earliest wins on ties
func (r *MemoryRepo) GetHighestBid(listingID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[listingID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) ||
			(b.Amount.Equal(highest.Amount) && b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return highest, nil
}
