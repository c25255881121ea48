package dao

type DaoManager struct {
	*BlockDao
	*PollDao
	*VoteDao
	*SettlementDao
}

func NewDaoManager(blockDao *BlockDao, pollDao *PollDao, voteDao *VoteDao, settlementDao *SettlementDao) *DaoManager {
	return &DaoManager{
		BlockDao:      blockDao,
		PollDao:       pollDao,
		VoteDao:       voteDao,
		SettlementDao: settlementDao,
	}
}
