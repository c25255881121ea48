package dao

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/pricing"
	"github.com/binpoll/binpoll-settler/util"
)

type VoteDao struct {
	DB *gorm.DB
}

func NewVoteDao(db *gorm.DB) *VoteDao {
	return &VoteDao{
		DB: db,
	}
}

// RecordVote is the authoritative vote write. The whole check-and-increment
// sequence runs inside one transaction holding a row lock on the poll, so
// concurrent submissions for the same poll serialize here and the
// ended/full/already-voted/price checks are race free. The price is computed
// from the locked row via the shared pricing engine.
func (d *VoteDao) RecordVote(vote *model.Vote, nowUnix int64) error {
	return d.DB.Transaction(func(dbTx *gorm.DB) error {
		var poll model.Poll
		err := dbTx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("poll_id = ?", vote.PollId).Take(&poll).Error
		if err != nil {
			return err
		}

		if nowUnix >= poll.EndTime {
			return common.ErrPollEnded
		}
		if poll.CurrentVotes >= poll.MaxVotes {
			return common.ErrPollFull
		}
		if vote.OptionIndex >= poll.OptionCount {
			return common.ErrInvalidPoll
		}

		var count int64
		err = dbTx.Model(&model.Vote{}).
			Where("poll_id = ?", vote.PollId).
			Where("voter = ?", vote.Voter).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return common.ErrAlreadyVoted
		}

		price, err := pricing.NextVotePrice(util.MustAmount(poll.BasePrice), poll.CurrentVotes, poll.MaxVotes)
		if err != nil {
			return err
		}
		paid, err := util.ParseAmount(vote.AmountPaid)
		if err != nil {
			return err
		}
		if paid.LT(price) {
			return common.ErrInsufficientPayment
		}

		err = dbTx.Create(vote).Error
		if err != nil {
			return err
		}

		newPool := util.MustAmount(poll.VoterPool).Add(paid)
		return dbTx.Model(&model.Poll{}).
			Where("poll_id = ?", vote.PollId).
			Updates(map[string]interface{}{
				"current_votes": poll.CurrentVotes + 1,
				"voter_pool":    newPool.String(),
			}).Error
	})
}

func (d *VoteDao) GetVotesByPollId(pollId uint64) ([]*model.Vote, error) {
	votes := make([]*model.Vote, 0)
	err := d.DB.Where("poll_id = ?", pollId).
		Order("id asc").
		Find(&votes).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return votes, nil
}

func (d *VoteDao) IsVoteExists(pollId uint64, voter string) (bool, error) {
	exists := false
	if err := d.DB.Raw(
		"SELECT EXISTS(SELECT id FROM votes WHERE poll_id = ? and voter = ?)",
		pollId, voter).Scan(&exists).Error; err != nil {
		return false, err
	}
	return exists, nil
}
