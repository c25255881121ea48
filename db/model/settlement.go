package model

import (
	"gorm.io/gorm"
)

type Settlement struct {
	Id              int64
	PollId          uint64           `gorm:"NOT NULL;uniqueIndex:idx_settlement_poll_id"`
	WinningOption   uint32           `gorm:"NOT NULL"`
	TotalWinners    uint64           `gorm:"NOT NULL"`
	RewardPerWinner string           `gorm:"NOT NULL"`
	TotalRewardPool string           `gorm:"NOT NULL"`
	PlatformFee     string           `gorm:"NOT NULL"`
	CreatorFee      string           `gorm:"NOT NULL"`
	CreatorRefund   string           `gorm:"NOT NULL"` // zero unless the poll settled without winners
	Status          SettlementStatus `gorm:"NOT NULL;index:idx_settlement_status"`
	TxHash          string           `gorm:"NOT NULL"`
	CreatedTime     int64            `gorm:"NOT NULL"`
}

func (*Settlement) TableName() string {
	return "settlements"
}

func InitSettlementTable(db *gorm.DB) {
	if !db.Migrator().HasTable(&Settlement{}) {
		err := db.Migrator().CreateTable(&Settlement{})
		if err != nil {
			panic(err)
		}
	}
}

type SettlementStatus int

const (
	PayoutPending   SettlementStatus = iota // settlement decided, payout tx not sent
	PayoutSubmitted                         // payout tx sent, waiting for confirmation
	PayoutConfirmed                         // payout tx confirmed on chain
)
