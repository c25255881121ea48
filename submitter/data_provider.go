package submitter

import (
	"github.com/binpoll/binpoll-settler/db/dao"
	"github.com/binpoll/binpoll-settler/db/model"
)

type DataProvider interface {
	GetEarliestSettlementsByStatus(status model.SettlementStatus, limit int) ([]*model.Settlement, error)
	UpdateSettlementSubmitted(pollId uint64, txHash string) error
	UpdateSettlementStatus(pollId uint64, from, to model.SettlementStatus) error
}

// ChainClient is the slice of the chain executor the submitter needs.
type ChainClient interface {
	SubmitSettleTx(pollId uint64, winningOption uint32) (string, error)
	IsTxConfirmed(txHash string) (bool, error)
}

type DataHandler struct {
	daoManager *dao.DaoManager
}

func NewDataHandler(daoManager *dao.DaoManager) *DataHandler {
	return &DataHandler{
		daoManager: daoManager,
	}
}

func (h *DataHandler) GetEarliestSettlementsByStatus(status model.SettlementStatus, limit int) ([]*model.Settlement, error) {
	return h.daoManager.SettlementDao.GetEarliestSettlementsByStatus(status, limit)
}

func (h *DataHandler) UpdateSettlementSubmitted(pollId uint64, txHash string) error {
	return h.daoManager.SettlementDao.UpdateSettlementSubmitted(pollId, txHash)
}

func (h *DataHandler) UpdateSettlementStatus(pollId uint64, from, to model.SettlementStatus) error {
	return h.daoManager.SettlementDao.UpdateSettlementStatus(pollId, from, to)
}
