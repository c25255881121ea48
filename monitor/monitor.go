package monitor

import (
	"time"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/executor"
	"github.com/binpoll/binpoll-settler/logging"
	"github.com/binpoll/binpoll-settler/metrics"
)

// Monitor mirrors BinPoll contract state into the database, one block at a
// time. The saved block cursor makes the scan restart-safe: after a crash it
// resumes at the first block it has not persisted.
type Monitor struct {
	config        *config.Config
	executor      *executor.Executor
	dataProvider  DataProvider
	converter     *Converter
	metricService *metrics.MetricService
}

func NewMonitor(cfg *config.Config, executor *executor.Executor, dataProvider DataProvider,
	metricService *metrics.MetricService,
) *Monitor {
	return &Monitor{
		config:        cfg,
		executor:      executor,
		dataProvider:  dataProvider,
		converter:     NewConverter(executor.ContractABI()),
		metricService: metricService,
	}
}

func (m *Monitor) ListenEventLoop() {
	for {
		err := m.poll()
		if err != nil {
			if m.metricService != nil {
				m.metricService.IncMonitorErr()
			}
			time.Sleep(common.RetryInterval)
		}
	}
}

func (m *Monitor) poll() error {
	nextHeight, err := m.calNextHeight()
	if err != nil {
		return err
	}
	latestHeight := m.executor.GetCachedBlockHeight()
	if latestHeight == 0 || nextHeight > latestHeight {
		time.Sleep(NoBlockSleep)
		return nil
	}

	logs, err := m.executor.GetPollLogs(nextHeight, nextHeight)
	if err != nil {
		logging.Logger.Errorf("monitor failed to get logs at height %d, err=%s", nextHeight, err.Error())
		return err
	}
	blockTime, err := m.executor.GetBlockTime(nextHeight)
	if err != nil {
		logging.Logger.Errorf("monitor failed to get block time at height %d, err=%s", nextHeight, err.Error())
		return err
	}

	polls := make([]*model.Poll, 0)
	votes := make([]*model.Vote, 0)
	for _, log := range logs {
		poll, vote, err := m.converter.ParseLog(log, blockTime)
		if err != nil {
			logging.Logger.Errorf("monitor failed to parse log at height %d, err=%s", nextHeight, err.Error())
			return err
		}
		if poll != nil {
			polls = append(polls, poll)
		}
		if vote != nil {
			votes = append(votes, vote)
		}
	}

	block := &model.Block{
		Height:      nextHeight,
		BlockTime:   blockTime,
		CreatedTime: time.Now().Unix(),
	}
	err = m.dataProvider.SaveBlockAndChanges(block, polls, votes)
	if err != nil {
		logging.Logger.Errorf("monitor failed to save block %d, err=%s", nextHeight, err.Error())
		return err
	}

	if m.metricService != nil {
		m.metricService.SetSavedBlock(nextHeight)
		for _, poll := range polls {
			m.metricService.SetSavedPoll(poll.PollId)
		}
	}
	if len(polls) != 0 || len(votes) != 0 {
		logging.Logger.Infof("monitor saved block %d with %d polls and %d votes", nextHeight, len(polls), len(votes))
	}
	return nil
}

func (m *Monitor) calNextHeight() (uint64, error) {
	latestBlock, err := m.dataProvider.GetLatestBlock()
	if err != nil {
		logging.Logger.Errorf("monitor failed to get latest saved block, err=%s", err.Error())
		return 0, err
	}
	if latestBlock.Height == 0 {
		return m.config.ChainConfig.StartHeight, nil
	}
	return latestBlock.Height + 1, nil
}
