package submitter

import (
	"time"

	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/logging"
	"github.com/binpoll/binpoll-settler/metrics"
)

// PayoutSubmitter pushes recorded settlement outcomes on chain. Settlements
// advance pending -> submitted -> confirmed, each step guarded by a
// conditional status update so a crash between the chain call and the db
// write at worst resubmits one tx.
type PayoutSubmitter struct {
	chainClient   ChainClient
	dataProvider  DataProvider
	metricService *metrics.MetricService
}

func NewPayoutSubmitter(chainClient ChainClient, dataProvider DataProvider,
	metricService *metrics.MetricService,
) *PayoutSubmitter {
	return &PayoutSubmitter{
		chainClient:   chainClient,
		dataProvider:  dataProvider,
		metricService: metricService,
	}
}

func (s *PayoutSubmitter) SubmitPayoutsLoop() {
	submitTicker := time.NewTicker(SubmitInterval)
	confirmTicker := time.NewTicker(ConfirmInterval)
	for {
		select {
		case <-submitTicker.C:
			if err := s.SubmitPayouts(); err != nil {
				s.incErr()
			}
		case <-confirmTicker.C:
			if err := s.ConfirmPayouts(); err != nil {
				s.incErr()
			}
		}
	}
}

// SubmitPayouts sends a settle tx for every pending settlement in the batch.
func (s *PayoutSubmitter) SubmitPayouts() error {
	settlements, err := s.dataProvider.GetEarliestSettlementsByStatus(model.PayoutPending, BatchSize)
	if err != nil {
		logging.Logger.Errorf("submitter failed to get pending settlements, err=%s", err.Error())
		return err
	}
	for _, settlement := range settlements {
		txHash, err := s.chainClient.SubmitSettleTx(settlement.PollId, settlement.WinningOption)
		if err != nil {
			logging.Logger.Errorf("submitter failed to submit settle tx for poll %d, err=%s",
				settlement.PollId, err.Error())
			s.incErr()
			continue
		}
		err = s.dataProvider.UpdateSettlementSubmitted(settlement.PollId, txHash)
		if err != nil {
			logging.Logger.Errorf("submitter failed to mark poll %d submitted, err=%s",
				settlement.PollId, err.Error())
			s.incErr()
			continue
		}
		if s.metricService != nil {
			s.metricService.IncPayoutSubmitted()
		}
		logging.Logger.Infof("submitter sent settle tx %s for poll %d", txHash, settlement.PollId)
	}
	return nil
}

// ConfirmPayouts checks receipts for submitted settlements and finalizes the
// ones already included in a block.
func (s *PayoutSubmitter) ConfirmPayouts() error {
	settlements, err := s.dataProvider.GetEarliestSettlementsByStatus(model.PayoutSubmitted, BatchSize)
	if err != nil {
		logging.Logger.Errorf("submitter failed to get submitted settlements, err=%s", err.Error())
		return err
	}
	for _, settlement := range settlements {
		confirmed, err := s.chainClient.IsTxConfirmed(settlement.TxHash)
		if err != nil {
			logging.Logger.Errorf("submitter failed to check tx %s for poll %d, err=%s",
				settlement.TxHash, settlement.PollId, err.Error())
			s.incErr()
			continue
		}
		if !confirmed {
			continue
		}
		err = s.dataProvider.UpdateSettlementStatus(settlement.PollId, model.PayoutSubmitted, model.PayoutConfirmed)
		if err != nil {
			logging.Logger.Errorf("submitter failed to mark poll %d confirmed, err=%s",
				settlement.PollId, err.Error())
			s.incErr()
			continue
		}
		if s.metricService != nil {
			s.metricService.IncPayoutConfirmed()
		}
		logging.Logger.Infof("submitter confirmed settle tx %s for poll %d", settlement.TxHash, settlement.PollId)
	}
	return nil
}

func (s *PayoutSubmitter) incErr() {
	if s.metricService != nil {
		s.metricService.IncSubmitterErr()
	}
}
