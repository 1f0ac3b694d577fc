package listing

import (
	"context"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/locker"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/shopspring/decimal"
)

// defaultMinIncrement applies when the seller leaves the increment blank
var defaultMinIncrement = decimal.NewFromInt(1)

// CreateListingInput carries the seller-supplied listing terms. Price fields
// arrive as strings and are parsed here, matching the wire format.
type CreateListingInput struct {
	Title         string
	Description   string
	StartingPrice string
	ReservePrice  string // optional
	MinIncrement  string // optional, defaults to 1.00
	EndsAt        *time.Time
}

// ListingService defines the lifecycle logic for auction listings
type ListingService struct {
	repo  repository.AuctionDB
	locks *locker.KeyedLock
}

// NewListingService creates a new ListingService instance
func NewListingService(repo repository.AuctionDB, locks *locker.KeyedLock) *ListingService {
	return &ListingService{
		repo:  repo,
		locks: locks,
	}
}

// CreateListing validates the seller's terms and stores a new open listing
func (s *ListingService) CreateListing(sellerID string, in CreateListingInput) (models.Listing, error) {
	if sellerID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing seller", auctionerrors.ErrInvalidListing)
	}
	if in.Title == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing title", auctionerrors.ErrInvalidListing)
	}

	startingPrice, err := decimal.NewFromString(in.StartingPrice)
	if err != nil || startingPrice.IsNegative() {
		return models.Listing{}, fmt.Errorf("service: %w - starting price must be a non-negative amount", auctionerrors.ErrInvalidListing)
	}

	minIncrement := defaultMinIncrement
	if in.MinIncrement != "" {
		minIncrement, err = decimal.NewFromString(in.MinIncrement)
		if err != nil || !minIncrement.IsPositive() {
			return models.Listing{}, fmt.Errorf("service: %w - minimum increment must be a positive amount", auctionerrors.ErrInvalidListing)
		}
	}

	// Reserve price is stored for the seller's information only; bid
	// validation never reads it and no relation to the starting price is
	// enforced.
	var reservePrice *decimal.Decimal
	if in.ReservePrice != "" {
		rp, err := decimal.NewFromString(in.ReservePrice)
		if err != nil || rp.IsNegative() {
			return models.Listing{}, fmt.Errorf("service: %w - reserve price must be a non-negative amount", auctionerrors.ErrInvalidListing)
		}
		reservePrice = &rp
	}

	now := time.Now().UTC()
	l := models.Listing{
		ListingID:     utils.GenerateID(),
		SellerID:      sellerID,
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: startingPrice,
		ReservePrice:  reservePrice,
		MinIncrement:  minIncrement,
		EndsAt:        in.EndsAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateListing(l); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing for seller %s: %w", sellerID, err)
	}
	return l, nil
}

// GetListing returns a listing by id
func (s *ListingService) GetListing(listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidListing)
	}

	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return l, nil
}

// GetListingsBySeller returns all listings created by a seller
func (s *ListingService) GetListingsBySeller(sellerID string) ([]models.Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("service: %w - empty seller ID", auctionerrors.ErrInvalidListing)
	}

	listings, err := s.repo.GetListingsBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get listings for seller %s: %w", sellerID, err)
	}
	return listings, nil
}

// DeleteListing removes a listing. Only the seller may delete, and only while
// no bids exist. The check-and-delete runs inside the listing's exclusive
// section so it cannot race a concurrent bid.
func (s *ListingService) DeleteListing(ctx context.Context, listingID, requesterID string) error {
	if listingID == "" || requesterID == "" {
		return fmt.Errorf("service: %w - missing listingID or requesterID", auctionerrors.ErrInvalidListing)
	}

	l, err := s.repo.GetListing(listingID)
	if err != nil {
		return fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	if l.SellerID != requesterID {
		return fmt.Errorf("service: %w - only the seller may delete a listing", auctionerrors.ErrForbidden)
	}

	unlock, err := s.locks.Acquire(ctx, listingID)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	defer unlock()

	if err := s.repo.DeleteListing(listingID); err != nil {
		return fmt.Errorf("service: failed to delete listing %s: %w", listingID, err)
	}
	return nil
}
