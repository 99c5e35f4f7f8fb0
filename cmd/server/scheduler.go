package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/anuraagbaishya/paladin/internal/app"
	"github.com/anuraagbaishya/paladin/internal/config"
	"github.com/anuraagbaishya/paladin/pkg/logger"
)

// startScheduler starts the periodic advisory refresh when a cron schedule is
// configured. Returns nil when scheduling is disabled.
func startScheduler(cfg *config.Config, refresh *app.RefreshService, log *logger.Logger) (*cron.Cron, error) {
	spec := cfg.Advisory.RefreshSchedule
	if spec == "" {
		return nil, nil
	}

	days := cfg.Advisory.RefreshScheduleDays
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		j, err := refresh.SubmitRefresh(context.Background(), days)
		if err != nil {
			// A manual refresh may already hold the lock.
			if errors.Is(err, app.ErrRefreshInProgress) {
				log.Info("scheduled refresh skipped, one is already running")
				return
			}
			log.Error("scheduled refresh failed to submit", "error", err)
			return
		}
		log.Info("scheduled refresh submitted", "job_id", j.ID, "days", days)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("refresh scheduler started", "schedule", spec, "days", days)
	return c, nil
}
