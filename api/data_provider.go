package api

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetPollByPollId(pollId uint64) (*model.Poll, error)
	GetSettlementByPollId(pollId uint64) (*model.Settlement, error)
}

type DataHandler struct {
	daoManager *dao.DaoManager
}

func NewDataHandler(daoManager *dao.DaoManager) *DataHandler {
	return &DataHandler{
		daoManager: daoManager,
	}
}

func (h *DataHandler) GetPollByPollId(pollId uint64) (*model.Poll, error) {
	return h.daoManager.GetPollByPollId(pollId)
}

func (h *DataHandler) GetSettlementByPollId(pollId uint64) (*model.Settlement, error) {
	return h.daoManager.SettlementDao.GetSettlementByPollId(pollId)
}
