package dao

import (
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/db/model"
)

type BlockDao struct {
	DB *gorm.DB
}

func NewBlockDao(db *gorm.DB) *BlockDao {
	return &BlockDao{
		DB: db,
	}
}

func (d *BlockDao) GetLatestBlock() (*model.Block, error) {
	block := model.Block{}
	err := d.DB.Model(model.Block{}).Order("height desc").Take(&block).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return &block, nil
}

func (d *BlockDao) DeleteBlocksBefore(unixTimestamp int64) error {
	return d.DB.Where("created_time < ?", unixTimestamp).Delete(&model.Block{}).Error
}
