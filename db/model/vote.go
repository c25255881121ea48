package model

import (
	"gorm.io/gorm"
)

type Vote struct {
	Id          int64
	PollId      uint64 `gorm:"NOT NULL;uniqueIndex:idx_poll_id_voter,priority:1;index:idx_vote_poll_id"`
	Voter       string `gorm:"NOT NULL;size:42;uniqueIndex:idx_poll_id_voter,priority:2"`
	OptionIndex uint32 `gorm:"NOT NULL"`
	AmountPaid  string `gorm:"NOT NULL"` // smallest units, the dynamic price at cast time
	Height      uint64 `gorm:"NOT NULL"`
	CreatedTime int64  `gorm:"NOT NULL"`
}

func (*Vote) TableName() string {
	return "votes"
}

func InitVoteTable(db *gorm.DB) {
	if !db.Migrator().HasTable(&Vote{}) {
		err := db.Migrator().CreateTable(&Vote{})
		if err != nil {
			panic(err)
		}
	}
}
