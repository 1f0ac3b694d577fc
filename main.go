package main

import (
	"fmt"
	"os"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	listing "auction-house/internal/listingService"
	"auction-house/internal/locker"
	"auction-house/internal/notify"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/internal/settlement"
	"auction-house/utils"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	repo, err := buildStore(cfg)
	if err != nil {
		utils.Fatal("failed to initialize store", map[string]any{"store": cfg.Store, "error": err.Error()})
	}

	locks := locker.NewKeyedLock(cfg.LockWait)
	inbox := notify.NewInbox()

	listingSvc := listing.NewListingService(repo, locks)
	biddingSvc := bidding.NewBiddingService(repo, locks, inbox)
	settlementSvc := settlement.NewSettlementService(repo, locks, inbox)

	router := server.SetupRouter(listingSvc, biddingSvc, settlementSvc, inbox)

	utils.Info("starting auction server", map[string]any{"port": cfg.Port, "store": cfg.Store})
	if err := router.Run(cfg.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildStore selects the AuctionDB backend from configuration
func buildStore(cfg config.Config) (repository.AuctionDB, error) {
	switch cfg.Store {
	case config.StoreMySQL:
		db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return repository.NewSQLRepo(db)
	default:
		return repository.NewMemoryRepo(), nil
	}
}
