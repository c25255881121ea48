package monitor

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetLatestBlock() (*model.Block, error)
	SaveBlockAndChanges(block *model.Block, polls []*model.Poll, votes []*model.Vote) error
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

func (h *DataHandler) SaveBlockAndChanges(block *model.Block, polls []*model.Poll, votes []*model.Vote) error {
	return h.daoManager.SaveBlockAndChanges(block, polls, votes)
}
