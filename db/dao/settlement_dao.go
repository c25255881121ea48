package dao

import (
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
)

type SettlementDao struct {
	DB *gorm.DB
}

func NewSettlementDao(db *gorm.DB) *SettlementDao {
	return &SettlementDao{
		DB: db,
	}
}

// SaveSettlementAndMarkSettled commits a settlement decision atomically: the
// poll flips settled false -> true and the result row is created, or nothing
// happens. The conditional update is the idempotence boundary, a concurrent
// or repeated attempt finds zero affected rows and gets ErrAlreadySettled.
func (d *SettlementDao) SaveSettlementAndMarkSettled(settlement *model.Settlement) error {
	return d.DB.Transaction(func(dbTx *gorm.DB) error {
		res := dbTx.Model(&model.Poll{}).
			Where("poll_id = ?", settlement.PollId).
			Where("settled = ?", false).
			Updates(map[string]interface{}{
				"settled":        true,
				"winning_option": settlement.WinningOption,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrAlreadySettled
		}
		return dbTx.Create(settlement).Error
	})
}

func (d *SettlementDao) GetSettlementByPollId(pollId uint64) (*model.Settlement, error) {
	var settlement model.Settlement
	err := d.DB.Where("poll_id = ?", pollId).Take(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (d *SettlementDao) GetEarliestSettlementsByStatus(status model.SettlementStatus, limit int) ([]*model.Settlement, error) {
	settlements := []*model.Settlement{}
	err := d.DB.Where("status = ?", status).
		Order("id asc").
		Limit(limit).
		Find(&settlements).Error
	if err != nil {
		return nil, err
	}
	return settlements, nil
}

// UpdateSettlementStatus advances the payout state machine. The previous
// status is part of the predicate so that retried or overlapping submitters
// cannot move a settlement twice.
func (d *SettlementDao) UpdateSettlementStatus(pollId uint64, from, to model.SettlementStatus) error {
	res := d.DB.Model(&model.Settlement{}).
		Where("poll_id = ?", pollId).
		Where("status = ?", from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *SettlementDao) UpdateSettlementSubmitted(pollId uint64, txHash string) error {
	res := d.DB.Model(&model.Settlement{}).
		Where("poll_id = ?", pollId).
		Where("status = ?", model.PayoutPending).
		Updates(map[string]interface{}{
			"status":  model.PayoutSubmitted,
			"tx_hash": txHash,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
