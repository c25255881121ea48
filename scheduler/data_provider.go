package scheduler

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetLatestBlock() (*model.Block, error)
	GetEndedUnsettledPolls(cutoffUnix int64, limit int) ([]*model.Poll, error)
	CountStuckPolls(cutoffUnix int64) (int64, error)
}

type DataHandler struct {
	daoManager *dao.DaoManager
}

func NewDataHandler(daoManager *dao.DaoManager) *DataHandler {
	return &DataHandler{
		daoManager: daoManager,
	}
}

func (h *DataHandler) GetLatestBlock() (*model.Block, error) {
	return h.daoManager.GetLatestBlock()
}

func (h *DataHandler) GetEndedUnsettledPolls(cutoffUnix int64, limit int) ([]*model.Poll, error) {
	return h.daoManager.GetEndedUnsettledPolls(cutoffUnix, limit)
}

func (h *DataHandler) CountStuckPolls(cutoffUnix int64) (int64, error) {
	return h.daoManager.CountStuckPolls(cutoffUnix)
}
