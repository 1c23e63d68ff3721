package services

import (
	"testing"
	"time"

	"bounty-market-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBountyValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	valid := CreateBountyRequest{
		Title:        "Write blog posts",
		Description:  "One post per unit",
		Category:     "Content",
		PricePerUnit: decimal.NewFromInt(200),
		Total:        10,
		Deadline:     time.Now().Add(48 * time.Hour),
	}

	t.Run("no acting user", func(t *testing.T) {
		_, err := svc.CreateBounty("", valid)
		assert.IsType(t, &NotAuthenticatedError{}, err)
	})

	t.Run("missing title", func(t *testing.T) {
		req := valid
		req.Title = ""
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("missing description", func(t *testing.T) {
		req := valid
		req.Description = ""
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		req := valid
		req.Category = "Gambling"
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("zero price", func(t *testing.T) {
		req := valid
		req.PricePerUnit = decimal.Zero
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("negative price", func(t *testing.T) {
		req := valid
		req.PricePerUnit = decimal.NewFromInt(-5)
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("missing deadline", func(t *testing.T) {
		req := valid
		req.Deadline = time.Time{}
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("deadline already passed", func(t *testing.T) {
		req := valid
		req.Deadline = time.Now().Add(-time.Hour)
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("zero total", func(t *testing.T) {
		req := valid
		req.Total = 0
		_, err := svc.CreateBounty("poster-1", req)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("nothing persisted on failure", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&models.Bounty{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestCreateBountyInitializesLedger(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	bounty := newTestBounty(t, svc, "poster-1", 500, 8)

	assert.Equal(t, models.BountyStatusActive, bounty.Status)
	assert.Equal(t, "generate-b2b-leads", bounty.Slug)
	assert.True(t, decimal.NewFromInt(4000).Equal(bounty.TotalBudget))

	persisted := reloadBounty(t, db, bounty.ID)
	assert.Zero(t, persisted.Completed)
	assert.Zero(t, persisted.Approved)
	assert.Zero(t, persisted.PendingReview)
	assert.Zero(t, persisted.HunterCount)

	stats := reloadStats(t, db, "poster-1")
	assert.Equal(t, 1, stats.PostedBounties)

	// A second bounty keeps incrementing the same stats row.
	newTestBounty(t, svc, "poster-1", 100, 3)
	stats = reloadStats(t, db, "poster-1")
	assert.Equal(t, 2, stats.PostedBounties)
}

func TestClaimBountyIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)
	bounty := newTestBounty(t, svc, "poster-1", 500, 8)

	first, err := svc.ClaimBounty(bounty.ID, "hunter-1")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusActive, first.Status)

	// Re-claiming succeeds, returns the same claim, and never
	// double-increments hunter_count.
	second, err := svc.ClaimBounty(bounty.ID, "hunter-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	b := reloadBounty(t, db, bounty.ID)
	assert.Equal(t, 1, b.HunterCount)
	assertCounterInvariant(t, db, bounty.ID)

	// Claiming never touches unit counters.
	assert.Zero(t, b.Completed)
	assert.Zero(t, b.PendingReview)

	_, err = svc.ClaimBounty(bounty.ID, "hunter-2")
	require.NoError(t, err)
	b = reloadBounty(t, db, bounty.ID)
	assert.Equal(t, 2, b.HunterCount)
	assertCounterInvariant(t, db, bounty.ID)
}

func TestClaimBountyNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	_, err := svc.ClaimBounty("no-such-bounty", "hunter-1")
	assert.IsType(t, &NotFoundError{}, err)

	bounty := newTestBounty(t, svc, "poster-1", 500, 8)
	require.NoError(t, db.Model(&models.Bounty{}).
		Where("id = ?", bounty.ID).
		Update("status", models.BountyStatusCompleted).Error)

	_, err = svc.ClaimBounty(bounty.ID, "hunter-1")
	assert.IsType(t, &NotFoundError{}, err)
}

func TestListBountiesFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	leads := newTestBounty(t, svc, "poster-1", 500, 8)

	content, err := svc.CreateBounty("poster-2", CreateBountyRequest{
		Title:        "Write AI trend posts",
		Description:  "One post per unit",
		Category:     "Content",
		PricePerUnit: decimal.NewFromInt(200),
		Total:        10,
		Deadline:     time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Bounty{}).
		Where("id = ?", content.ID).
		Update("status", models.BountyStatusCompleted).Error)

	all, err := svc.ListBounties(BountyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListBounties(BountyFilter{Status: models.BountyStatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, leads.ID, active[0].ID)

	byCategory, err := svc.ListBounties(BountyFilter{Category: "Content"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, content.ID, byCategory[0].ID)

	byPoster, err := svc.ListBounties(BountyFilter{PosterID: "poster-1"})
	require.NoError(t, err)
	require.Len(t, byPoster, 1)
	assert.Equal(t, leads.ID, byPoster[0].ID)

	// "All" category means no filter, matching the UI's default tab.
	allCat, err := svc.ListBounties(BountyFilter{Category: "All"})
	require.NoError(t, err)
	assert.Len(t, allCat, 2)
}

func TestMyActiveBounties(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)
	subSvc := NewSubmissionService(db)

	bounty := newTestBounty(t, svc, "poster-1", 100, 5)
	_, err := svc.ClaimBounty(bounty.ID, "hunter-1")
	require.NoError(t, err)

	// Two submissions, one approved, one still pending.
	first, err := subSvc.SubmitWork(bounty.ID, "hunter-1", "meeting booked with acme", "")
	require.NoError(t, err)
	_, err = subSvc.SubmitWork(bounty.ID, "hunter-1", "meeting booked with globex", "")
	require.NoError(t, err)
	_, err = subSvc.ApproveSubmission(first.ID, "poster-1")
	require.NoError(t, err)

	summaries, err := svc.MyActiveBounties("hunter-1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, bounty.ID, s.Bounty.ID)
	assert.Equal(t, 2, s.MySubmissions)
	assert.Equal(t, 1, s.MyPending)
	assert.Equal(t, 1, s.MyApproved)
	assert.True(t, decimal.NewFromInt(100).Equal(s.MyEarned))

	// Hunters without claims see nothing.
	none, err := svc.MyActiveBounties("hunter-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
