// Command reconcile recomputes inventory stock and vendor purchase counters
// from the purchase and sale records, then exits.
package main

import (
	"context"
	"os"

	"mandi-backend/internal/config"
	"mandi-backend/internal/database"
	"mandi-backend/internal/inventory"
	"mandi-backend/internal/logging"
	"mandi-backend/internal/store"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseDSN, log)
	if err != nil {
		logging.LogError(log, "reconcile", "database.Open", nil, err)
		os.Exit(1)
	}

	res, err := inventory.NewService(store.New(db)).Rebuild(context.Background())
	if err != nil {
		logging.LogError(log, "reconcile", "Rebuild", nil, err)
		os.Exit(1)
	}

	for _, d := range res.Items {
		log.WithFields(logrus.Fields{
			"item":   d.Item,
			"before": d.Before,
			"after":  d.After,
		}).Warn("stock corrected")
	}
	for _, d := range res.Vendors {
		log.WithFields(logrus.Fields{
			"vendor": d.Name,
			"before": d.Before,
			"after":  d.After,
		}).Warn("purchase counter corrected")
	}
	log.WithFields(logrus.Fields{
		"items":   len(res.Items),
		"vendors": len(res.Vendors),
	}).Info("reconciliation finished")
}
