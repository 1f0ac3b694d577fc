package repository

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the MySQL instance named by AUCTION_MYSQL_DSN. The
// suite is skipped when no instance is available.
func openTestDB(t *testing.T) *SQLRepo {
	t.Helper()

	dsn := os.Getenv("AUCTION_MYSQL_DSN")
	if dsn == "" {
		t.Skip("AUCTION_MYSQL_DSN not set, skipping MySQL store tests")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo, err := NewSQLRepo(db)
	require.NoError(t, err)
	return repo
}

func sqlListing(sellerID string) model.Listing {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Listing{
		ListingID:     utils.GenerateID(),
		SellerID:      sellerID,
		Title:         "SQL store listing",
		StartingPrice: decimal.RequireFromString("50.00"),
		MinIncrement:  decimal.RequireFromString("5.00"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestSQLRepo_ListingRoundTrip(t *testing.T) {
	repo := openTestDB(t)

	l := sqlListing("seller-sql-1")
	require.NoError(t, repo.CreateListing(l))

	got, err := repo.GetListing(l.ListingID)
	require.NoError(t, err)
	require.Equal(t, l.ListingID, got.ListingID)
	require.True(t, got.StartingPrice.Equal(l.StartingPrice))
	require.False(t, got.Sold)

	require.NoError(t, repo.DeleteListing(l.ListingID))
	_, err = repo.GetListing(l.ListingID)
	require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
}

func TestSQLRepo_BidLifecycle(t *testing.T) {
	repo := openTestDB(t)

	l := sqlListing("seller-sql-2")
	require.NoError(t, repo.CreateListing(l))

	now := time.Now().UTC().Truncate(time.Second)
	var bidIDs []string
	for i := 0; i < 3; i++ {
		bid := model.Bid{
			BidID:     utils.GenerateID(),
			ListingID: l.ListingID,
			BidderID:  fmt.Sprintf("buyer-sql-%d", i),
			Amount:    decimal.NewFromInt(int64(60 + i*10)),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.AppendBid(bid))
		bidIDs = append(bidIDs, bid.BidID)
	}

	// current_price follows the ledger
	got, err := repo.GetListing(l.ListingID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentPrice)
	require.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(80)))

	highest, err := repo.GetHighestBid(l.ListingID)
	require.NoError(t, err)
	require.Equal(t, bidIDs[2], highest.BidID)

	bids, err := repo.GetBidsByListing(l.ListingID, 2, model.OrderAmountDesc)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.True(t, bids[0].Amount.GreaterThan(bids[1].Amount))

	// deletion is blocked while bids exist
	err = repo.DeleteListing(l.ListingID)
	require.True(t, errors.Is(err, auctionerrors.ErrHasBids))

	// settle once, then never again
	require.NoError(t, repo.MarkSold(l.ListingID, bidIDs[0], time.Now().UTC()))
	err = repo.MarkSold(l.ListingID, bidIDs[1], time.Now().UTC())
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadySold))

	err = repo.AppendBid(model.Bid{
		BidID:     utils.GenerateID(),
		ListingID: l.ListingID,
		BidderID:  "buyer-sql-late",
		Amount:    decimal.NewFromInt(200),
		CreatedAt: time.Now().UTC(),
	})
	require.True(t, errors.Is(err, auctionerrors.ErrAlreadySold))

	got, err = repo.GetListing(l.ListingID)
	require.NoError(t, err)
	require.True(t, got.Sold)
	require.Equal(t, bidIDs[0], got.AcceptedBidID)
}
