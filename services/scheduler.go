// services/scheduler.go
package services

import (
	"log"
	"time"

	"bounty-market-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *BountyService) StartDeadlineScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close bounties whose deadline has passed, and bounties
	// whose every unit has been submitted and decided.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.CloseExpiredBounties(time.Now()); err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
			}
		}),
	)
}

// CloseExpiredBounties flips due bounties to completed. Status is the only
// column written; the submission and settlement paths own the counters, and
// a whole-row write here could revert their concurrent updates. Pending
// reviews and unsettled approved units survive the close.
func (s *BountyService) CloseExpiredBounties(now time.Time) error {
	var due []models.Bounty
	err := s.DB.Where("status = ?", models.BountyStatusActive).
		Where("deadline <= ? OR (completed >= total AND pending_review = 0)", now).
		Find(&due).Error
	if err != nil {
		return err
	}

	for _, b := range due {
		res := s.DB.Model(&models.Bounty{}).
			Where("id = ? AND status = ?", b.ID, models.BountyStatusActive).
			Update("status", models.BountyStatusCompleted)
		if res.Error != nil {
			log.Printf("[Scheduler] Failed to close bounty %s: %v", b.ID, res.Error)
		} else if res.RowsAffected > 0 {
			log.Printf("⏰ Deadline reached, closed bounty: %s", b.Title)
		}
	}
	return nil
}
