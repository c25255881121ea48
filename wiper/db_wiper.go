package wiper

import (
	"time"

	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/logging"
)

const (
	WipeInterval = 1 * time.Hour
	// Block rows are only a scan cursor, anything older than the retention
	// window is never read again. Polls, votes and settlements are kept
	// forever.
	BlockRetention = 7 * 24 * time.Hour
)

type DBWiper struct {
	daoManager *dao.DaoManager
}

func NewDBWiper(daoManager *dao.DaoManager) *DBWiper {
	return &DBWiper{
		daoManager: daoManager,
	}
}

func (w *DBWiper) WipeLoop() {
	ticker := time.NewTicker(WipeInterval)
	for range ticker.C {
		cutoff := time.Now().Add(-BlockRetention).Unix()
		err := w.daoManager.BlockDao.DeleteBlocksBefore(cutoff)
		if err != nil {
			logging.Logger.Errorf("wiper failed to delete old blocks, err=%s", err.Error())
		}
	}
}
