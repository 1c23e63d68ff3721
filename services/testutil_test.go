package services

import (
	"fmt"
	"testing"
	"time"

	"bounty-market-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite allows one writer at a time; a single pooled connection keeps
	// concurrent tests deterministic instead of tripping SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Bounty{},
		&models.Claim{},
		&models.Submission{},
		&models.Cashout{},
		&models.UserStats{},
		&models.HunterMirror{},
	))
	return db
}

func newTestBounty(t *testing.T, svc *BountyService, posterID string, price int64, total int) *models.Bounty {
	t.Helper()

	bounty, err := svc.CreateBounty(posterID, CreateBountyRequest{
		Title:        "Generate B2B leads",
		Description:  "One qualified meeting booked per unit",
		Category:     "Lead Gen",
		PricePerUnit: decimal.NewFromInt(price),
		Total:        total,
		Deadline:     time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return bounty
}

func reloadBounty(t *testing.T, db *gorm.DB, id string) models.Bounty {
	t.Helper()

	var bounty models.Bounty
	require.NoError(t, db.First(&bounty, "id = ?", id).Error)
	return bounty
}

func reloadStats(t *testing.T, db *gorm.DB, userID string) models.UserStats {
	t.Helper()

	var stats models.UserStats
	require.NoError(t, db.First(&stats, "id = ?", userID).Error)
	return stats
}

// assertCounterInvariant checks 0 <= approved + pending_review <= completed <= total
// and hunter_count == number of claim rows.
func assertCounterInvariant(t *testing.T, db *gorm.DB, bountyID string) {
	t.Helper()

	b := reloadBounty(t, db, bountyID)
	require.GreaterOrEqual(t, b.Approved+b.PendingReview, 0)
	require.LessOrEqual(t, b.Approved+b.PendingReview, b.Completed)
	require.LessOrEqual(t, b.Completed, b.Total)

	var claimCount int64
	require.NoError(t, db.Model(&models.Claim{}).Where("bounty_id = ?", bountyID).Count(&claimCount).Error)
	require.EqualValues(t, claimCount, b.HunterCount)
}
