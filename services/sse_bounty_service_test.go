package services

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"bounty-market-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBountySnapshotCursorAdvances(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	newTestBounty(t, svc, "poster-1", 500, 8)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	// First snapshot: everything is newer than the zero cursor.
	cursor, ok := svc.writeBountySnapshot(w, BountyFilter{}, time.Time{})
	require.True(t, ok)
	assert.True(t, cursor.After(time.Time{}))
	assert.Contains(t, buf.String(), "event: bounties")
	assert.Contains(t, buf.String(), "Generate B2B leads")

	// Up-to-date cursor: nothing changed, nothing written, cursor stays.
	buf.Reset()
	next, ok := svc.writeBountySnapshot(w, BountyFilter{}, cursor)
	require.True(t, ok)
	assert.Equal(t, cursor, next)
	assert.Empty(t, buf.String())

	// A write to any matching bounty moves updated_at past the cursor and
	// produces a fresh snapshot with a strictly later cursor.
	bounty := newTestBounty(t, svc, "poster-2", 100, 3)
	_, err := svc.ClaimBounty(bounty.ID, "hunter-1")
	require.NoError(t, err)

	buf.Reset()
	advanced, ok := svc.writeBountySnapshot(w, BountyFilter{}, cursor)
	require.True(t, ok)
	assert.True(t, advanced.After(cursor))
	assert.Contains(t, buf.String(), "event: bounties")

	// And again: the advanced cursor suppresses a repeat of the same state.
	buf.Reset()
	final, ok := svc.writeBountySnapshot(w, BountyFilter{}, advanced)
	require.True(t, ok)
	assert.Equal(t, advanced, final)
	assert.Empty(t, buf.String())
}

func TestBountySnapshotHonorsFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewBountyService(db)

	newTestBounty(t, svc, "poster-1", 500, 8) // Lead Gen
	content, err := svc.CreateBounty("poster-2", CreateBountyRequest{
		Title:        "Write AI trend posts",
		Description:  "One post per unit",
		Category:     "Content",
		PricePerUnit: decimal.NewFromInt(200),
		Total:        10,
		Deadline:     time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	cursor, ok := svc.writeBountySnapshot(w, BountyFilter{Category: "Content"}, time.Time{})
	require.True(t, ok)
	assert.Contains(t, buf.String(), content.Title)
	assert.NotContains(t, buf.String(), "Generate B2B leads")

	// Changes outside the filter don't move this subscription's cursor.
	require.NoError(t, db.Model(&models.Bounty{}).
		Where("category = ?", "Lead Gen").
		Update("hunter_count", 1).Error)

	buf.Reset()
	next, ok := svc.writeBountySnapshot(w, BountyFilter{Category: "Content"}, cursor)
	require.True(t, ok)
	assert.Equal(t, cursor, next)
	assert.Empty(t, buf.String())
}
