package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/binpoll/binpoll-settler/alert"
	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/logging"
	"github.com/binpoll/binpoll-settler/metrics"
	"github.com/binpoll/binpoll-settler/settlement"
)

// SettleMonitor drives settlement over time: every tick it scans ended,
// unsettled on-chain polls and settles each one independently. A failing poll
// is logged and left for the next tick, it never aborts the batch. Overlapping
// ticks and restarts are safe because the settled flip itself is conditional.
type SettleMonitor struct {
	dataProvider   DataProvider
	settler        *settlement.Settler
	metricService  *metrics.MetricService
	alertConfig    *config.AlertConfig
	tickInterval   time.Duration
	stuckThreshold time.Duration
	batchSize      int
	now            func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once

	// written by concurrent Ticks, hence atomic
	lastStuckCount atomic.Int64
}

func NewSettleMonitor(cfg *config.Config, dataProvider DataProvider, settler *settlement.Settler,
	metricService *metrics.MetricService,
) *SettleMonitor {
	tickInterval := DefaultTickInterval
	if cfg.SettlementConfig.TickIntervalSeconds > 0 {
		tickInterval = time.Duration(cfg.SettlementConfig.TickIntervalSeconds) * time.Second
	}
	stuckThreshold := DefaultStuckThreshold
	if cfg.SettlementConfig.StuckThresholdSeconds > 0 {
		stuckThreshold = time.Duration(cfg.SettlementConfig.StuckThresholdSeconds) * time.Second
	}
	batchSize := cfg.SettlementConfig.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &SettleMonitor{
		dataProvider:   dataProvider,
		settler:        settler,
		metricService:  metricService,
		alertConfig:    &cfg.AlertConfig,
		tickInterval:   tickInterval,
		stuckThreshold: stuckThreshold,
		batchSize:      batchSize,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}
}

// WithClock replaces the time source, used by tests with simulated clocks.
func (m *SettleMonitor) WithClock(now func() time.Time) *SettleMonitor {
	m.now = now
	return m
}

func (m *SettleMonitor) SettlePollsLoop() {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Stop terminates the loop. Safe to call more than once.
func (m *SettleMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

// Tick runs one settlement pass. Exported so a manual trigger can share the
// exact code path of the timer.
//
// Eligibility is gated on the mirror cursor, not the wall clock alone: a poll
// settles only once the latest mirrored block's time has passed its end time,
// so votes cast before the deadline in blocks the monitor has not scanned yet
// can never be missed by the tally.
func (m *SettleMonitor) Tick() {
	startTime := time.Now()
	now := m.now()

	latestBlock, err := m.dataProvider.GetLatestBlock()
	if err != nil {
		logging.Logger.Errorf("scheduler failed to get mirror cursor, err=%s", err.Error())
		if m.metricService != nil {
			m.metricService.IncSchedulerErr()
		}
		return
	}
	cutoff := latestBlock.BlockTime
	if now.Unix() < cutoff {
		cutoff = now.Unix()
	}

	polls, err := m.dataProvider.GetEndedUnsettledPolls(cutoff, m.batchSize)
	if err != nil {
		logging.Logger.Errorf("scheduler failed to fetch ended unsettled polls, err=%s", err.Error())
		if m.metricService != nil {
			m.metricService.IncSchedulerErr()
		}
		return
	}

	for _, poll := range polls {
		_, err := m.settler.SettlePoll(poll.PollId)
		if err != nil {
			if errors.Is(err, common.ErrAlreadySettled) {
				// lost a race with an overlapping tick or a manual trigger
				logging.Logger.Infof("poll %d already settled, skipping", poll.PollId)
				continue
			}
			logging.Logger.Errorf("scheduler failed to settle poll %d, err=%s", poll.PollId, err.Error())
			if m.metricService != nil {
				m.metricService.IncSchedulerErr()
			}
			continue
		}
		if m.metricService != nil {
			m.metricService.IncSettledPoll()
			m.metricService.SetLastSettledPoll(poll.PollId)
		}
	}

	m.checkStuckPolls(now)

	if m.metricService != nil {
		m.metricService.SetSchedulerDuration(time.Since(startTime))
	}
}

// checkStuckPolls surfaces polls that stayed unsettled well past their end
// time, which means every tick has been failing on them.
func (m *SettleMonitor) checkStuckPolls(now time.Time) {
	cutoff := now.Add(-m.stuckThreshold).Unix()
	count, err := m.dataProvider.CountStuckPolls(cutoff)
	if err != nil {
		logging.Logger.Errorf("scheduler failed to count stuck polls, err=%s", err.Error())
		return
	}
	if m.metricService != nil {
		m.metricService.SetStuckPolls(count)
	}
	last := m.lastStuckCount.Swap(count)
	if count > 0 && count != last {
		msg := fmt.Sprintf("%d polls ended more than %s ago and are still unsettled", count, m.stuckThreshold)
		logging.Logger.Error(msg)
		alert.SendTelegramMessage(m.alertConfig.Identity, m.alertConfig.TelegramBotId, m.alertConfig.TelegramChatId, msg)
	}
}
