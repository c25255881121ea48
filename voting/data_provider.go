package voting

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetPollByPollId(pollId uint64) (*model.Poll, error)
	RecordVote(vote *model.Vote, nowUnix int64) error
	SavePoll(poll *model.Poll) error
}

// CredibilityProvider supplies a voter's current reputation score. The score
// lives outside the settler, on chain or in the platform backend.
type CredibilityProvider interface {
	GetCredibility(voter string) (uint64, error)
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

func (h *DataHandler) RecordVote(vote *model.Vote, nowUnix int64) error {
	return h.daoManager.RecordVote(vote, nowUnix)
}

func (h *DataHandler) SavePoll(poll *model.Poll) error {
	return h.daoManager.SavePoll(poll)
}
