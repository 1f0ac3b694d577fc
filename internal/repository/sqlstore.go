package repository

import (
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// listingRow is the database mapping for a listing
type listingRow struct {
	ListingID     string           `gorm:"column:listing_id;primaryKey;size:36"`
	SellerID      string           `gorm:"column:seller_id;size:36;index"`
	Title         string           `gorm:"column:title;size:255"`
	Description   string           `gorm:"column:description;type:text"`
	StartingPrice decimal.Decimal  `gorm:"column:starting_price;type:decimal(12,2)"`
	ReservePrice  *decimal.Decimal `gorm:"column:reserve_price;type:decimal(12,2)"`
	MinIncrement  decimal.Decimal  `gorm:"column:min_increment;type:decimal(12,2)"`
	EndsAt        *time.Time       `gorm:"column:ends_at;index"`
	CurrentPrice  *decimal.Decimal `gorm:"column:current_price;type:decimal(12,2)"`
	Sold          bool             `gorm:"column:sold"`
	AcceptedBidID string           `gorm:"column:accepted_bid_id;size:36"`
	CreatedAt     time.Time        `gorm:"column:created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at"`
}

func (listingRow) TableName() string { return "listings" }

// bidRow is the database mapping for a bid. Bids are append-only; there is no
// update or delete path through this store.
type bidRow struct {
	BidID     string          `gorm:"column:bid_id;primaryKey;size:36"`
	ListingID string          `gorm:"column:listing_id;size:36;index:idx_listing_amount"`
	BidderID  string          `gorm:"column:bidder_id;size:36;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(12,2);index:idx_listing_amount"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

func (bidRow) TableName() string { return "bids" }

// SQLRepo is a gorm-backed implementation of AuctionDB for deployments where
// listings and bids live in shared storage. Write paths that touch both a
// listing and its bids run inside a transaction holding a FOR UPDATE row lock
// on the listing, so concurrent writers from any process serialize on the row.
type SQLRepo struct {
	db *gorm.DB
}

// NewSQLRepo wraps an open gorm connection and migrates the schema
func NewSQLRepo(db *gorm.DB) (*SQLRepo, error) {
	if err := db.AutoMigrate(&listingRow{}, &bidRow{}); err != nil {
		return nil, fmt.Errorf("migrate auction schema: %w", err)
	}
	return &SQLRepo{db: db}, nil
}

// CreateListing stores a new listing
func (r *SQLRepo) CreateListing(listing model.Listing) error {
	if err := r.db.Create(toListingRow(listing)).Error; err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ListingID, err)
	}
	return nil
}

// GetListing returns a listing by id
func (r *SQLRepo) GetListing(listingID string) (model.Listing, error) {
	var row listingRow
	err := r.db.First(&row, "listing_id = ?", listingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if err != nil {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, err)
	}
	return fromListingRow(row), nil
}

// GetListingsBySeller returns all listings created by a seller, newest first
func (r *SQLRepo) GetListingsBySeller(sellerID string) ([]model.Listing, error) {
	var rows []listingRow
	if err := r.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get listings for seller %s: %w", sellerID, err)
	}
	listings := make([]model.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, fromListingRow(row))
	}
	return listings, nil
}

// DeleteListing removes a listing once its ledger is confirmed empty, holding
// the row lock so no bid can slip in between the check and the delete
func (r *SQLRepo) DeleteListing(listingID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockListing(tx, listingID); err != nil {
			return fmt.Errorf("delete listing %s: %w", listingID, err)
		}

		var count int64
		if err := tx.Model(&bidRow{}).Where("listing_id = ?", listingID).Count(&count).Error; err != nil {
			return fmt.Errorf("delete listing %s: %w", listingID, err)
		}
		if count > 0 {
			return fmt.Errorf("delete listing %s: %w", listingID, auctionerrors.ErrHasBids)
		}

		if err := tx.Delete(&listingRow{}, "listing_id = ?", listingID).Error; err != nil {
			return fmt.Errorf("delete listing %s: %w", listingID, err)
		}
		return nil
	})
}

// AppendBid inserts the bid row and updates the listing's denormalized
// current_price in one transaction, locking the listing row first
func (r *SQLRepo) AppendBid(bid model.Bid) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, bid.ListingID)
		if err != nil {
			return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, err)
		}
		if listing.Sold {
			return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, auctionerrors.ErrAlreadySold)
		}

		if err := tx.Create(&bidRow{
			BidID:     bid.BidID,
			ListingID: bid.ListingID,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			CreatedAt: bid.CreatedAt,
		}).Error; err != nil {
			return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, err)
		}

		updates := map[string]any{
			"current_price": bid.Amount,
			"updated_at":    bid.CreatedAt,
		}
		if err := tx.Model(&listingRow{}).Where("listing_id = ?", bid.ListingID).Updates(updates).Error; err != nil {
			return fmt.Errorf("append bid for listing %s: %w", bid.ListingID, err)
		}
		return nil
	})
}

// MarkSold closes a listing and records the accepted bid in one transaction
func (r *SQLRepo) MarkSold(listingID, bidID string, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		listing, err := lockListing(tx, listingID)
		if err != nil {
			return fmt.Errorf("mark listing %s sold: %w", listingID, err)
		}
		if listing.Sold {
			return fmt.Errorf("mark listing %s sold: %w", listingID, auctionerrors.ErrAlreadySold)
		}

		var bid bidRow
		err = tx.First(&bid, "bid_id = ? AND listing_id = ?", bidID, listingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mark listing %s sold: %w", listingID, auctionerrors.ErrBidNotFound)
		}
		if err != nil {
			return fmt.Errorf("mark listing %s sold: %w", listingID, err)
		}

		updates := map[string]any{
			"sold":            true,
			"accepted_bid_id": bidID,
			"updated_at":      at,
		}
		if err := tx.Model(&listingRow{}).Where("listing_id = ?", listingID).Updates(updates).Error; err != nil {
			return fmt.Errorf("mark listing %s sold: %w", listingID, err)
		}
		return nil
	})
}

// GetBid returns a bid by id, verifying it belongs to the stated listing
func (r *SQLRepo) GetBid(listingID, bidID string) (model.Bid, error) {
	var row bidRow
	err := r.db.First(&row, "bid_id = ? AND listing_id = ?", bidID, listingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bid{}, fmt.Errorf("get bid %s for listing %s: %w", bidID, listingID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s for listing %s: %w", bidID, listingID, err)
	}
	return fromBidRow(row), nil
}

// GetBidsByListing returns bids for a listing in the requested order
func (r *SQLRepo) GetBidsByListing(listingID string, limit int, order model.BidOrder) ([]model.Bid, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return nil, err
	}

	q := r.db.Where("listing_id = ?", listingID)
	switch order {
	case model.OrderAmountDesc:
		q = q.Order("amount DESC").Order("created_at ASC")
	default:
		q = q.Order("created_at ASC")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []bidRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	bids := make([]model.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, fromBidRow(row))
	}
	return bids, nil
}

// GetBidsByBidder returns all bids a user has placed, newest first
func (r *SQLRepo) GetBidsByBidder(bidderID string) ([]model.Bid, error) {
	var rows []bidRow
	if err := r.db.Where("bidder_id = ?", bidderID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get bids for bidder %s: %w", bidderID, err)
	}
	bids := make([]model.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, fromBidRow(row))
	}
	return bids, nil
}

// GetHighestBid returns the highest bid for a listing, earliest wins on ties
func (r *SQLRepo) GetHighestBid(listingID string) (model.Bid, error) {
	var row bidRow
	err := r.db.Where("listing_id = ?", listingID).
		Order("amount DESC").Order("created_at ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get highest bid for listing %s: %w", listingID, err)
	}
	return fromBidRow(row), nil
}

// lockListing reads a listing inside tx with a FOR UPDATE row lock
func lockListing(tx *gorm.DB, listingID string) (listingRow, error) {
	var row listingRow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "listing_id = ?", listingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return listingRow{}, auctionerrors.ErrListingNotFound
	}
	if err != nil {
		return listingRow{}, err
	}
	return row, nil
}

func toListingRow(l model.Listing) *listingRow {
	return &listingRow{
		ListingID:     l.ListingID,
		SellerID:      l.SellerID,
		Title:         l.Title,
		Description:   l.Description,
		StartingPrice: l.StartingPrice,
		ReservePrice:  l.ReservePrice,
		MinIncrement:  l.MinIncrement,
		EndsAt:        l.EndsAt,
		CurrentPrice:  l.CurrentPrice,
		Sold:          l.Sold,
		AcceptedBidID: l.AcceptedBidID,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func fromListingRow(row listingRow) model.Listing {
	return model.Listing{
		ListingID:     row.ListingID,
		SellerID:      row.SellerID,
		Title:         row.Title,
		Description:   row.Description,
		StartingPrice: row.StartingPrice,
		ReservePrice:  row.ReservePrice,
		MinIncrement:  row.MinIncrement,
		EndsAt:        row.EndsAt,
		CurrentPrice:  row.CurrentPrice,
		Sold:          row.Sold,
		AcceptedBidID: row.AcceptedBidID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func fromBidRow(row bidRow) model.Bid {
	return model.Bid{
		BidID:     row.BidID,
		ListingID: row.ListingID,
		BidderID:  row.BidderID,
		Amount:    row.Amount,
		CreatedAt: row.CreatedAt,
	}
}

// Compile-time interface checks
var (
	_ AuctionDB = (*MemoryRepo)(nil)
	_ AuctionDB = (*SQLRepo)(nil)
)
