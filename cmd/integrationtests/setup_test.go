package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	listing "auction-house/internal/listingService"
	"auction-house/internal/locker"
	model "auction-house/internal/models"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/internal/settlement"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SetupTestRouter initializes the router with an in-memory repository for
// integration testing.
func SetupTestRouter() *gin.Engine {
	return SetupTestRouterWithListings()
}

// SetupTestRouterWithListings initializes the router and seeds the repo with
// listings.
func SetupTestRouterWithListings(listings ...model.Listing) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	for _, l := range listings {
		_ = repo.CreateListing(l)
	}

	locks := locker.NewKeyedLock(5 * time.Second)
	inbox := notify.NewInbox()
	listingService := listing.NewListingService(repo, locks)
	biddingService := bidding.NewBiddingService(repo, locks, inbox)
	settlementService := settlement.NewSettlementService(repo, locks, inbox)

	return server.SetupRouter(listingService, biddingService, settlementService, inbox)
}

// OpenListing builds a seedable listing with sensible defaults
func OpenListing(listingID, sellerID string, startingPrice, increment string) model.Listing {
	now := time.Now().UTC()
	return model.Listing{
		ListingID:     listingID,
		SellerID:      sellerID,
		Title:         "Listing " + listingID,
		Description:   "integration test listing",
		StartingPrice: decimal.RequireFromString(startingPrice),
		MinIncrement:  decimal.RequireFromString(increment),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ExecuteRequest executes an HTTP request as the given user and returns the
// response recorder. An empty userID sends the request anonymously.
func ExecuteRequest(router *gin.Engine, method, url, userID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, userID string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(router, method, url, userID, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
