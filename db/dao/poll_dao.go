package dao

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/util"
)

type PollDao struct {
	DB *gorm.DB
}

func NewPollDao(db *gorm.DB) *PollDao {
	return &PollDao{
		DB: db,
	}
}

func (d *PollDao) SavePoll(poll *model.Poll) error {
	return d.DB.Create(poll).Error
}

func (d *PollDao) GetPollByPollId(pollId uint64) (*model.Poll, error) {
	var poll model.Poll
	err := d.DB.Where("poll_id = ?", pollId).Take(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// GetEndedUnsettledPolls returns unsettled on-chain polls whose end time is
// at or before the cutoff, oldest end time first. Callers pass the mirror
// cursor's block time as the cutoff so polls with unscanned blocks before
// their deadline are not yet eligible.
func (d *PollDao) GetEndedUnsettledPolls(cutoffUnix int64, limit int) ([]*model.Poll, error) {
	polls := []*model.Poll{}
	err := d.DB.Where("settled = ?", false).
		Where("on_chain = ?", true).
		Where("end_time <= ?", cutoffUnix).
		Order("end_time asc").
		Limit(limit).
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// CountStuckPolls counts ended, unsettled on-chain polls older than the given
// cutoff. A non-zero count means the scheduler has been failing on them.
func (d *PollDao) CountStuckPolls(cutoffUnix int64) (int64, error) {
	var count int64
	err := d.DB.Model(&model.Poll{}).
		Where("settled = ?", false).
		Where("on_chain = ?", true).
		Where("end_time <= ?", cutoffUnix).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (d *PollDao) GetPollsAfterId(id int64, limit int) ([]*model.Poll, error) {
	polls := []*model.Poll{}
	err := d.DB.Where("id > ?", id).
		Order("id asc").
		Limit(limit).
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// SaveBlockAndChanges persists one scanned block together with the polls and
// votes mirrored from its logs. Mirrored votes were already validated by the
// contract, only the poll counters are updated here.
func (d *PollDao) SaveBlockAndChanges(block *model.Block, polls []*model.Poll, votes []*model.Vote) error {
	return d.DB.Transaction(func(dbTx *gorm.DB) error {
		err := dbTx.Create(block).Error
		if err != nil {
			return err
		}
		if len(polls) != 0 {
			err = dbTx.Create(polls).Error
			if err != nil {
				return err
			}
		}
		for _, vote := range votes {
			var poll model.Poll
			err = dbTx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("poll_id = ?", vote.PollId).Take(&poll).Error
			if err != nil {
				return err
			}
			err = dbTx.Create(vote).Error
			if err != nil {
				return err
			}
			newPool := util.MustAmount(poll.VoterPool).Add(util.MustAmount(vote.AmountPaid))
			err = dbTx.Model(&model.Poll{}).
				Where("poll_id = ?", vote.PollId).
				Updates(map[string]interface{}{
					"current_votes": poll.CurrentVotes + 1,
					"voter_pool":    newPool.String(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
