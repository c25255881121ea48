package auditor

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetPollsAfterId(id int64, limit int) ([]*model.Poll, error)
	GetVotesByPollId(pollId uint64) ([]*model.Vote, error)
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

func (h *DataHandler) GetPollsAfterId(id int64, limit int) ([]*model.Poll, error) {
	return h.daoManager.PollDao.GetPollsAfterId(id, limit)
}

func (h *DataHandler) GetVotesByPollId(pollId uint64) ([]*model.Vote, error) {
	return h.daoManager.VoteDao.GetVotesByPollId(pollId)
}

func (h *DataHandler) GetSettlementByPollId(pollId uint64) (*model.Settlement, error) {
	return h.daoManager.SettlementDao.GetSettlementByPollId(pollId)
}
