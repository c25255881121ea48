package settlement

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetPollByPollId(pollId uint64) (*model.Poll, error)
	GetVotesByPollId(pollId uint64) ([]*model.Vote, error)
	SaveSettlementAndMarkSettled(settlement *model.Settlement) error
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

func (h *DataHandler) GetVotesByPollId(pollId uint64) ([]*model.Vote, error) {
	return h.daoManager.GetVotesByPollId(pollId)
}

func (h *DataHandler) SaveSettlementAndMarkSettled(settlement *model.Settlement) error {
	return h.daoManager.SaveSettlementAndMarkSettled(settlement)
}
