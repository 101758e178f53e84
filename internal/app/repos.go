package app

import (
	"gorm.io/gorm"

	"github.com/brightpath/assessment-engine/internal/data/repos"
	"github.com/brightpath/assessment-engine/internal/platform/logger"
)

type Repos struct {
	Pool        repos.PoolRepo
	Item        repos.ItemRepo
	Session     repos.SessionRepo
	Response    repos.ResponseRepo
	Calibration repos.CalibrationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Pool:        repos.NewPoolRepo(db, log),
		Item:        repos.NewItemRepo(db, log),
		Session:     repos.NewSessionRepo(db, log),
		Response:    repos.NewResponseRepo(db, log),
		Calibration: repos.NewCalibrationRepo(db, log),
	}
}
