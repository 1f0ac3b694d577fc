package repository

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Helper to create a new Listing
func newListing(listingID, sellerID, title string, startingPrice string) model.Listing {
	now := time.Now().UTC()
	return model.Listing{
		ListingID:     listingID,
		SellerID:      sellerID,
		Title:         title,
		Description:   fmt.Sprintf("%s description", title),
		StartingPrice: decimal.RequireFromString(startingPrice),
		MinIncrement:  decimal.NewFromInt(1),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Helper to create a new Bid
func newBid(bidID, listingID, bidderID string, amount string, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: createdAt,
	}
}

// Test AppendBid
func TestMemoryRepo_AppendBid(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))

	tests := []struct {
		name      string
		bid       model.Bid
		wantError error
	}{
		{name: "valid_bid", bid: newBid("bid1", "listing1", "user1", "100", time.Now().UTC()), wantError: nil},
		{name: "listing_not_found", bid: newBid("bid2", "listingX", "user1", "50", time.Now().UTC()), wantError: auctionerrors.ErrListingNotFound},
		{name: "second_bid_same_user", bid: newBid("bid3", "listing1", "user1", "110", time.Now().UTC()), wantError: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.AppendBid(tc.bid)
			if tc.wantError != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tc.wantError), "expected error: %v, got: %v", tc.wantError, err)
			} else {
				require.NoError(t, err)

				// current_price cache must follow the appended bid
				l, err := repo.GetListing(tc.bid.ListingID)
				require.NoError(t, err)
				require.NotNil(t, l.CurrentPrice)
				require.True(t, l.CurrentPrice.Equal(tc.bid.Amount),
					"current_price %s should equal appended amount %s", l.CurrentPrice, tc.bid.Amount)
			}
		})
	}

	t.Run("append_rejected_on_sold_listing", func(t *testing.T) {
		repo := NewMemoryRepo()
		require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))
		require.NoError(t, repo.AppendBid(newBid("bid1", "listing1", "user1", "60", time.Now().UTC())))
		require.NoError(t, repo.MarkSold("listing1", "bid1", time.Now().UTC()))

		err := repo.AppendBid(newBid("bid2", "listing1", "user2", "70", time.Now().UTC()))
		require.True(t, errors.Is(err, auctionerrors.ErrAlreadySold))
	})

	// concurrency test
	t.Run("concurrent_bids", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))

		var wg sync.WaitGroup
		concurrentCount := 50

		for i := 0; i < concurrentCount; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				b := newBid(fmt.Sprintf("bid-%d", i), "listing1", fmt.Sprintf("user-%d", i), fmt.Sprintf("%d", 100+i), time.Now().UTC())
				require.NoError(t, repo.AppendBid(b))
			}()
		}

		wg.Wait()

		bids, err := repo.GetBidsByListing("listing1", 0, model.OrderCreatedAsc)
		require.NoError(t, err)
		require.Len(t, bids, concurrentCount)
	})
}

// Test GetHighestBid
func TestMemoryRepo_GetHighestBid(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))
	require.NoError(t, repo.CreateListing(newListing("listing2", "seller1", "Listing 2", "50")))

	now := time.Now().UTC()
	require.NoError(t, repo.AppendBid(newBid("bid1", "listing1", "user1", "100", now)))
	require.NoError(t, repo.AppendBid(newBid("bid2", "listing1", "user2", "150", now.Add(time.Second))))
	require.NoError(t, repo.AppendBid(newBid("bid3", "listing1", "user3", "150", now.Add(2*time.Second))))
	require.NoError(t, repo.AppendBid(newBid("bid4", "listing1", "user4", "120", now.Add(3*time.Second))))

	t.Run("highest_with_tie_break_on_earliest", func(t *testing.T) {
		highest, err := repo.GetHighestBid("listing1")
		require.NoError(t, err)
		// bid2 and bid3 tie on amount; the earlier one wins
		require.Equal(t, "bid2", highest.BidID)
		require.True(t, highest.Amount.Equal(decimal.NewFromInt(150)))
	})

	t.Run("no_bids", func(t *testing.T) {
		_, err := repo.GetHighestBid("listing2")
		require.True(t, errors.Is(err, auctionerrors.ErrNoBids))
	})

	t.Run("unknown_listing", func(t *testing.T) {
		_, err := repo.GetHighestBid("nope")
		require.True(t, errors.Is(err, auctionerrors.ErrNoBids))
	})
}

// Test GetBidsByListing ordering and limits
func TestMemoryRepo_GetBidsByListing(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))

	now := time.Now().UTC()
	require.NoError(t, repo.AppendBid(newBid("bid1", "listing1", "user1", "100", now)))
	require.NoError(t, repo.AppendBid(newBid("bid2", "listing1", "user2", "300", now.Add(time.Second))))
	require.NoError(t, repo.AppendBid(newBid("bid3", "listing1", "user3", "200", now.Add(2*time.Second))))

	t.Run("amount_desc", func(t *testing.T) {
		bids, err := repo.GetBidsByListing("listing1", 0, model.OrderAmountDesc)
		require.NoError(t, err)
		require.Len(t, bids, 3)
		require.Equal(t, []string{"bid2", "bid3", "bid1"}, []string{bids[0].BidID, bids[1].BidID, bids[2].BidID})
	})

	t.Run("created_asc", func(t *testing.T) {
		bids, err := repo.GetBidsByListing("listing1", 0, model.OrderCreatedAsc)
		require.NoError(t, err)
		require.Equal(t, []string{"bid1", "bid2", "bid3"}, []string{bids[0].BidID, bids[1].BidID, bids[2].BidID})
	})

	t.Run("limit_applied", func(t *testing.T) {
		bids, err := repo.GetBidsByListing("listing1", 2, model.OrderAmountDesc)
		require.NoError(t, err)
		require.Len(t, bids, 2)
	})

	t.Run("unknown_listing", func(t *testing.T) {
		_, err := repo.GetBidsByListing("nope", 0, model.OrderCreatedAsc)
		require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
	})
}

// Test MarkSold
func TestMemoryRepo_MarkSold(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateListing(newListing("listing1", "seller1", "Listing 1", "50")))
	require.NoError(t, repo.AppendBid(newBid("bid1", "listing1", "user1", "100", time.Now().UTC())))

	t.Run("unknown_bid", func(t *testing.T) {
		err := repo.MarkSold("listing1", "nope", time.Now().UTC())
		require.True(t, errors.Is(err, auctionerrors.ErrBidNotFound))
	})

	t.Run("marks_sold_once", func(t *testing.T) {
		require.NoError(t, repo.MarkSold("listing1", "bid1", time.Now().UTC()))

		l, err := repo.GetListing("listing1")
		require.NoError(t, err)
		require.True(t, l.Sold)
		require.Equal(t, "bid1", l.AcceptedBidID)

		// second settlement must fail
		err = repo.MarkSold("listing1", "bid1", time.Now().UTC())
		require.True(t, errors.Is(err, auctionerrors.ErrAlreadySold))
	})

	t.Run("unknown_listing", func(t *testing.T) {
		err := repo.MarkSold("nope", "bid1", time.Now().UTC())
		require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
	})
}

// Test DeleteListing
func TestMemoryRepo_DeleteListing(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateListing(newListing("empty", "seller1", "Empty", "10")))
	require.NoError(t, repo.CreateListing(newListing("with-bids", "seller1", "With bids", "10")))
	require.NoError(t, repo.AppendBid(newBid("bid1", "with-bids", "user1", "20", time.Now().UTC())))

	t.Run("empty_ledger_deletes", func(t *testing.T) {
		require.NoError(t, repo.DeleteListing("empty"))
		_, err := repo.GetListing("empty")
		require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
	})

	t.Run("bids_block_deletion", func(t *testing.T) {
		err := repo.DeleteListing("with-bids")
		require.True(t, errors.Is(err, auctionerrors.ErrHasBids))
	})

	t.Run("unknown_listing", func(t *testing.T) {
		err := repo.DeleteListing("nope")
		require.True(t, errors.Is(err, auctionerrors.ErrListingNotFound))
	})
}

// Test seller and bidder lookups
func TestMemoryRepo_Lookups(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepo()
	l1 := newListing("listing1", "seller1", "Listing 1", "10")
	l1.CreatedAt = time.Now().UTC().Add(-time.Hour)
	l2 := newListing("listing2", "seller1", "Listing 2", "20")
	l3 := newListing("listing3", "seller2", "Listing 3", "30")
	require.NoError(t, repo.CreateListing(l1))
	require.NoError(t, repo.CreateListing(l2))
	require.NoError(t, repo.CreateListing(l3))

	now := time.Now().UTC()
	require.NoError(t, repo.AppendBid(newBid("bid1", "listing1", "user1", "15", now)))
	require.NoError(t, repo.AppendBid(newBid("bid2", "listing3", "user1", "35", now.Add(time.Second))))

	t.Run("listings_by_seller_newest_first", func(t *testing.T) {
		listings, err := repo.GetListingsBySeller("seller1")
		require.NoError(t, err)
		require.Len(t, listings, 2)
		require.Equal(t, "listing2", listings[0].ListingID)
	})

	t.Run("bids_by_bidder_newest_first", func(t *testing.T) {
		bids, err := repo.GetBidsByBidder("user1")
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.Equal(t, "bid2", bids[0].BidID)
	})

	t.Run("bidder_without_bids", func(t *testing.T) {
		bids, err := repo.GetBidsByBidder("nobody")
		require.NoError(t, err)
		require.Empty(t, bids)
	})

	t.Run("get_bid_checks_listing_ownership", func(t *testing.T) {
		_, err := repo.GetBid("listing1", "bid2")
		require.True(t, errors.Is(err, auctionerrors.ErrBidNotFound))

		bid, err := repo.GetBid("listing1", "bid1")
		require.NoError(t, err)
		require.Equal(t, "user1", bid.BidderID)
	})
}
