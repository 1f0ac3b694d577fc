package handler

import (
	"net/http"
	"testing"
	"time"

	"auction-house/internal/auctionerrors"
	listing "auction-house/internal/listingService"
	"auction-house/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleListing() models.Listing {
	now := time.Now().UTC()
	return models.Listing{
		ListingID:     "listing1",
		SellerID:      "seller1",
		Title:         "Vintage camera",
		StartingPrice: decimal.RequireFromString("50"),
		MinIncrement:  decimal.RequireFromString("5"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateListingHandler(t *testing.T) {
	t.Parallel()

	newRouter := func(listings ListingServiceInterface) *gin.Engine {
		router := gin.New()
		h := NewListingHandler(listings, nil)
		router.POST("/listings", asUser("seller1"), h.CreateListingHandler)
		return router
	}

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockListings := NewMockListingServiceInterface(ctrl)
		mockListings.EXPECT().
			CreateListing("seller1", listing.CreateListingInput{
				Title:         "Vintage camera",
				StartingPrice: "50.00",
				MinIncrement:  "5",
			}).
			Return(sampleListing(), nil)

		w := performRequest(newRouter(mockListings), http.MethodPost, "/listings", gin.H{
			"title":          "Vintage camera",
			"starting_price": "50.00",
			"min_increment":  "5",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]any)
		require.Equal(t, "listing1", data["listing_id"])
		require.Equal(t, "50.00", data["starting_price"])
	})

	t.Run("missing_required_fields", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockListings := NewMockListingServiceInterface(ctrl)

		w := performRequest(newRouter(mockListings), http.MethodPost, "/listings", gin.H{
			"title": "No price",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid_terms", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockListings := NewMockListingServiceInterface(ctrl)
		mockListings.EXPECT().CreateListing("seller1", gomock.Any()).
			Return(models.Listing{}, auctionerrors.ErrInvalidListing)

		w := performRequest(newRouter(mockListings), http.MethodPost, "/listings", gin.H{
			"title":          "Old book",
			"starting_price": "-1",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetListingHandler(t *testing.T) {
	t.Parallel()

	newRouter := func(listings ListingServiceInterface, bids BiddingServiceInterface) *gin.Engine {
		router := gin.New()
		h := NewListingHandler(listings, bids)
		router.GET("/listings/:listing_id", h.GetListingHandler)
		return router
	}

	t.Run("detail_with_bids", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		highest := models.Bid{BidID: "bid2", ListingID: "listing1", BidderID: "buyer2", Amount: decimal.RequireFromString("70")}

		mockListings := NewMockListingServiceInterface(ctrl)
		mockListings.EXPECT().GetListing("listing1").Return(sampleListing(), nil)

		mockBids := NewMockBiddingServiceInterface(ctrl)
		mockBids.EXPECT().GetBidsForListing("listing1", 10, models.OrderAmountDesc).Return([]models.Bid{
			highest,
			{BidID: "bid1", ListingID: "listing1", BidderID: "buyer1", Amount: decimal.RequireFromString("60")},
		}, nil)
		mockBids.EXPECT().GetHighestBid("listing1").Return(highest, nil)
		mockBids.EXPECT().GetMinimumBid("listing1").Return(decimal.RequireFromString("75"), nil)
		mockBids.EXPECT().IsEnded("listing1").Return(false, nil)

		w := performRequest(newRouter(mockListings, mockBids), http.MethodGet, "/listings/listing1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		data := body["data"].(map[string]any)
		require.Equal(t, "75.00", data["minimum_bid"])
		require.Equal(t, false, data["ended"])
		require.Len(t, data["bids"].([]any), 2)
		require.Equal(t, "bid2", data["highest_bid"].(map[string]any)["bid_id"])
	})

	t.Run("detail_without_bids", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockListings := NewMockListingServiceInterface(ctrl)
		mockListings.EXPECT().GetListing("listing1").Return(sampleListing(), nil)

		mockBids := NewMockBiddingServiceInterface(ctrl)
		mockBids.EXPECT().GetBidsForListing("listing1", 10, models.OrderAmountDesc).Return(nil, nil)
		mockBids.EXPECT().GetHighestBid("listing1").Return(models.Bid{}, auctionerrors.ErrNoBids)
		mockBids.EXPECT().GetMinimumBid("listing1").Return(decimal.RequireFromString("50"), nil)
		mockBids.EXPECT().IsEnded("listing1").Return(false, nil)

		w := performRequest(newRouter(mockListings, mockBids), http.MethodGet, "/listings/listing1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		data := body["data"].(map[string]any)
		require.Equal(t, "50.00", data["minimum_bid"])
		require.Empty(t, data["bids"])
		require.Nil(t, data["highest_bid"])
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockListings := NewMockListingServiceInterface(ctrl)
		mockListings.EXPECT().GetListing("nope").Return(models.Listing{}, auctionerrors.ErrListingNotFound)

		w := performRequest(newRouter(mockListings, nil), http.MethodGet, "/listings/nope", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteListingHandler(t *testing.T) {
	t.Parallel()

	newRouter := func(listings ListingServiceInterface) *gin.Engine {
		router := gin.New()
		h := NewListingHandler(listings, nil)
		router.DELETE("/listings/:listing_id", asUser("seller1"), h.DeleteListingHandler)
		return router
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", err: nil, wantStatus: http.StatusOK},
		{name: "has_bids", err: auctionerrors.ErrHasBids, wantStatus: http.StatusConflict},
		{name: "forbidden", err: auctionerrors.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "not_found", err: auctionerrors.ErrListingNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockListings := NewMockListingServiceInterface(ctrl)
			mockListings.EXPECT().DeleteListing(gomock.Any(), "listing1", "seller1").Return(tc.err)

			w := performRequest(newRouter(mockListings), http.MethodDelete, "/listings/listing1", nil)
			require.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
