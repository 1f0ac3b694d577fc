package server

import (
	bidding "auction-house/internal/biddingService"
	listing "auction-house/internal/listingService"
	"auction-house/internal/notify"
	"auction-house/internal/settlement"
	handler "auction-house/services/marketplace/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(
	listingService *listing.ListingService,
	biddingService *bidding.BiddingService,
	settlementService *settlement.SettlementService,
	inbox *notify.Inbox,
) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	listingHandler := handler.NewListingHandler(listingService, biddingService)
	biddingHandler := handler.NewBiddingHandler(biddingService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	notificationHandler := handler.NewNotificationHandler(inbox)

	listings := router.Group("/listings")
	{
		listings.POST("", IdentityMiddleware, listingHandler.CreateListingHandler)
		listings.GET("/:listing_id", listingHandler.GetListingHandler)
		listings.DELETE("/:listing_id", IdentityMiddleware, listingHandler.DeleteListingHandler)

		listings.POST("/:listing_id/bids", IdentityMiddleware, biddingHandler.PlaceBidHandler)
		listings.GET("/:listing_id/bids", biddingHandler.GetBidsByListingHandler)
		listings.GET("/:listing_id/highest", biddingHandler.GetHighestBidHandler)
		listings.GET("/:listing_id/minimum", biddingHandler.GetMinimumBidHandler)
		listings.GET("/:listing_id/winner", settlementHandler.GetWinnerHandler)

		listings.POST("/:listing_id/bids/:bid_id/accept", IdentityMiddleware, settlementHandler.AcceptBidHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/listings", listingHandler.GetListingsBySellerHandler)
		users.GET("/:user_id/bids", biddingHandler.GetBidsByBidderHandler)
		users.GET("/:user_id/notifications", IdentityMiddleware, notificationHandler.ListNotificationsHandler)
	}

	notifications := router.Group("/notifications")
	{
		notifications.POST("/:notification_id/read", IdentityMiddleware, notificationHandler.MarkNotificationReadHandler)
	}

	return router
}
