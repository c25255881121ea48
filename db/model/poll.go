package model

import (
	"gorm.io/gorm"
)

type Poll struct {
	Id                  int64
	PollId              uint64 `gorm:"NOT NULL;uniqueIndex:idx_poll_id"`
	Creator             string `gorm:"NOT NULL"`
	Options             string `gorm:"NOT NULL"` // labels joined by util.JoinOptions
	OptionCount         uint32 `gorm:"NOT NULL"`
	BasePrice           string `gorm:"NOT NULL"` // smallest units, decimal string
	MaxVotes            uint64 `gorm:"NOT NULL"`
	CurrentVotes        uint64 `gorm:"NOT NULL"`
	CreatorDeposit      string `gorm:"NOT NULL"`
	VoterPool           string `gorm:"NOT NULL"`
	RequiredCredibility uint64 `gorm:"NOT NULL"`
	EndTime             int64  `gorm:"NOT NULL;index:idx_end_time"`
	OnChain             bool   `gorm:"NOT NULL"`
	Settled             bool   `gorm:"NOT NULL;index:idx_settled"`
	WinningOption       uint32 `gorm:"NOT NULL"` // meaningful only when Settled
	Height              uint64 `gorm:"NOT NULL"`
	CreatedTime         int64  `gorm:"NOT NULL"`
}

func (*Poll) TableName() string {
	return "polls"
}

func InitPollTable(db *gorm.DB) {
	if !db.Migrator().HasTable(&Poll{}) {
		err := db.Migrator().CreateTable(&Poll{})
		if err != nil {
			panic(err)
		}
	}
}
