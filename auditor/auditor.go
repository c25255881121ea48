package auditor

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/alert"
	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/logging"
	"github.com/binpoll/binpoll-settler/metrics"
	"github.com/binpoll/binpoll-settler/util"
)

// PollAuditor re-derives the money invariants from raw rows: a poll's voter
// pool must equal the sum of its recorded vote payments, and a settled poll's
// outcome must pay out exactly the funds it took in. Mismatches are reported,
// never repaired.
type PollAuditor struct {
	dataProvider  DataProvider
	metricService *metrics.MetricService
	alertConfig   *config.AlertConfig
	cursor        int64
	mismatchCount uint64
}

func NewPollAuditor(cfg *config.Config, dataProvider DataProvider,
	metricService *metrics.MetricService,
) *PollAuditor {
	return &PollAuditor{
		dataProvider:  dataProvider,
		metricService: metricService,
		alertConfig:   &cfg.AlertConfig,
	}
}

func (a *PollAuditor) AuditLoop() {
	for {
		hasMore, err := a.AuditBatch()
		if err != nil {
			if a.metricService != nil {
				a.metricService.IncAuditErr()
			}
			time.Sleep(common.RetryInterval)
			continue
		}
		if !hasMore {
			// full pass done, start over after the quiet period
			a.cursor = 0
			time.Sleep(AuditInterval)
		}
	}
}

// AuditBatch checks the next page of polls and advances the cursor. It
// reports whether more polls remain in the current pass.
func (a *PollAuditor) AuditBatch() (bool, error) {
	polls, err := a.dataProvider.GetPollsAfterId(a.cursor, BatchSize)
	if err != nil {
		logging.Logger.Errorf("auditor failed to get polls after id %d, err=%s", a.cursor, err.Error())
		return false, err
	}
	for _, poll := range polls {
		if err := a.auditPoll(poll); err != nil {
			logging.Logger.Errorf("auditor failed to audit poll %d, err=%s", poll.PollId, err.Error())
			if a.metricService != nil {
				a.metricService.IncAuditErr()
			}
		}
		a.cursor = poll.Id
	}
	return len(polls) == BatchSize, nil
}

func (a *PollAuditor) auditPoll(poll *model.Poll) error {
	votes, err := a.dataProvider.GetVotesByPollId(poll.PollId)
	if err != nil {
		return err
	}
	voterPool, err := util.ParseAmount(poll.VoterPool)
	if err != nil {
		return err
	}
	paidSum := sdkmath.ZeroInt()
	for _, vote := range votes {
		paid, err := util.ParseAmount(vote.AmountPaid)
		if err != nil {
			return err
		}
		paidSum = paidSum.Add(paid)
	}
	if !paidSum.Equal(voterPool) {
		a.reportMismatch(fmt.Sprintf("poll %d voter pool %s does not match vote payments %s",
			poll.PollId, voterPool.String(), paidSum.String()))
	}
	if uint64(len(votes)) != poll.CurrentVotes {
		a.reportMismatch(fmt.Sprintf("poll %d vote count %d does not match %d recorded votes",
			poll.PollId, poll.CurrentVotes, len(votes)))
	}

	if !poll.Settled {
		return nil
	}
	settlement, err := a.dataProvider.GetSettlementByPollId(poll.PollId)
	if err == gorm.ErrRecordNotFound {
		a.reportMismatch(fmt.Sprintf("poll %d is settled but has no settlement row", poll.PollId))
		return nil
	}
	if err != nil {
		return err
	}
	return a.auditSettlement(poll, settlement, voterPool)
}

// auditSettlement checks fund conservation: every wei that entered the poll
// leaves it exactly once through the recorded outcome.
func (a *PollAuditor) auditSettlement(poll *model.Poll, settlement *model.Settlement, voterPool sdkmath.Int) error {
	deposit, err := util.ParseAmount(poll.CreatorDeposit)
	if err != nil {
		return err
	}
	rewardPool, err := util.ParseAmount(settlement.TotalRewardPool)
	if err != nil {
		return err
	}
	platformFee, err := util.ParseAmount(settlement.PlatformFee)
	if err != nil {
		return err
	}
	creatorFee, err := util.ParseAmount(settlement.CreatorFee)
	if err != nil {
		return err
	}
	creatorRefund, err := util.ParseAmount(settlement.CreatorRefund)
	if err != nil {
		return err
	}

	paidOut := rewardPool.Add(platformFee).Add(creatorFee).Add(creatorRefund)
	paidIn := deposit.Add(voterPool)
	if !paidOut.Equal(paidIn) {
		a.reportMismatch(fmt.Sprintf("poll %d settlement pays out %s but took in %s",
			poll.PollId, paidOut.String(), paidIn.String()))
	}
	if settlement.WinningOption != poll.WinningOption {
		a.reportMismatch(fmt.Sprintf("poll %d winning option %d does not match settlement %d",
			poll.PollId, poll.WinningOption, settlement.WinningOption))
	}
	return nil
}

func (a *PollAuditor) reportMismatch(msg string) {
	a.mismatchCount++
	logging.Logger.Error(msg)
	if a.metricService != nil {
		a.metricService.IncAuditMismatch()
	}
	if a.alertConfig != nil && a.alertConfig.TelegramBotId != "" {
		alert.SendTelegramMessage(a.alertConfig.Identity, a.alertConfig.TelegramBotId,
			a.alertConfig.TelegramChatId, msg)
	}
}
