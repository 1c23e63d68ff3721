package services

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"bounty-market-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// The SSE endpoints are the push-based change feed: each subscriber gets a
// sequence of full-result snapshots driven by an updated_at high-water mark.
// The cursor only moves forward, so a subscriber never sees counters go
// backward in time relative to snapshots it already received. Streams poll
// the database on their own tickers; the write path never knows they exist.

// StreamBountiesSSE streams bounty list snapshots matching the query filters.
func (s *BountyService) StreamBountiesSSE(c *fiber.Ctx) error {
	filter := BountyFilter{
		Status:   models.BountyStatus(c.Query("status")),
		Category: c.Query("category"),
		PosterID: c.Query("poster_id"),
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var cursor time.Time

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		// First snapshot goes out immediately.
		if next, ok := s.writeBountySnapshot(w, filter, cursor); ok {
			cursor = next
		} else {
			return
		}

		for {
			select {
			case <-ticker.C:
				next, ok := s.writeBountySnapshot(w, filter, cursor)
				if !ok {
					return
				}
				cursor = next

			case <-c.Context().Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}

// writeBountySnapshot sends a fresh snapshot if anything matching the filter
// changed past the cursor. Returns the advanced cursor and whether the client
// is still connected.
func (s *BountyService) writeBountySnapshot(w *bufio.Writer, filter BountyFilter, cursor time.Time) (time.Time, bool) {
	query := s.DB.Model(&models.Bounty{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" && filter.Category != "All" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PosterID != "" {
		query = query.Where("poster_id = ?", filter.PosterID)
	}

	var maxUpdated sql.NullTime
	if err := query.Session(&gorm.Session{}).
		Select("MAX(updated_at)").Scan(&maxUpdated).Error; err != nil {
		log.Printf("SSE bounty cursor query error: %v", err)
		return cursor, true
	}
	if !maxUpdated.Valid || !maxUpdated.Time.After(cursor) {
		return cursor, true
	}

	bounties, err := s.ListBounties(filter)
	if err != nil {
		log.Printf("SSE bounty snapshot query error: %v", err)
		return cursor, true
	}

	payload, _ := json.Marshal(bounties)
	fmt.Fprintf(w, "event: bounties\ndata: %s\n\n", payload)

	if err := w.Flush(); err != nil {
		// Client disconnected
		return cursor, false
	}
	return maxUpdated.Time, true
}

// StreamUserStatsSSE streams the authenticated user's aggregate record
// whenever a ledger event touches it.
func (s *StatsService) StreamUserStatsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		var cursor time.Time

		w.WriteString(":\n\n")
		w.Flush()

		send := func() bool {
			var stats models.UserStats
			err := s.DB.First(&stats, "id = ?", userID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return true
			}
			if err != nil {
				log.Printf("SSE stats query error for user %s: %v", userID, err)
				return true
			}
			if !stats.UpdatedAt.After(cursor) {
				return true
			}
			cursor = stats.UpdatedAt

			payload, _ := json.Marshal(stats)
			fmt.Fprintf(w, "event: stats\ndata: %s\n\n", payload)
			return w.Flush() == nil
		}

		if !send() {
			return
		}

		for {
			select {
			case <-ticker.C:
				if !send() {
					return
				}
			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
