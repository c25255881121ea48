package voting

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"

	"github.com/binpoll/binpoll-settler/accounting"
	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/metrics"
	"github.com/binpoll/binpoll-settler/pricing"
	"github.com/binpoll/binpoll-settler/util"
)

// Recorder is the vote acceptance gate for off-chain priced polls. The
// credibility check runs before the write is attempted; everything that must
// be race free (ended/full/already-voted/price) happens inside the data
// provider's atomic RecordVote.
type Recorder struct {
	dataProvider  DataProvider
	credibility   CredibilityProvider
	metricService *metrics.MetricService
	minDeposit    sdkmath.Int
	now           func() time.Time
}

func NewRecorder(dataProvider DataProvider, credibility CredibilityProvider,
	metricService *metrics.MetricService, minDeposit sdkmath.Int,
) *Recorder {
	return &Recorder{
		dataProvider:  dataProvider,
		credibility:   credibility,
		metricService: metricService,
		minDeposit:    minDeposit,
		now:           time.Now,
	}
}

// WithClock replaces the time source, used by tests with simulated clocks.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

func (r *Recorder) RecordVote(pollId uint64, voter string, optionIndex uint32, amountPaid string) (*model.Vote, error) {
	if !util.IsValidAddress(voter) {
		return nil, fmt.Errorf("%w: bad voter address %s", common.ErrInvalidVote, voter)
	}
	if _, err := util.ParseAmount(amountPaid); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidVote, err.Error())
	}
	voter = util.NormalizeAddress(voter)

	poll, err := r.dataProvider.GetPollByPollId(pollId)
	if err != nil {
		return nil, err
	}

	if poll.RequiredCredibility > 0 {
		var score uint64
		err = retry.Do(func() error {
			score, err = r.credibility.GetCredibility(voter)
			return err
		}, retry.Context(context.Background()), common.RtyAttem, common.RtyDelay, common.RtyErr)
		if err != nil {
			return nil, fmt.Errorf("credibility lookup failed for %s: %w", voter, err)
		}
		if score < poll.RequiredCredibility {
			r.rejected()
			return nil, fmt.Errorf("%w: score %d, required %d", common.ErrInsufficientCredibility, score, poll.RequiredCredibility)
		}
	}

	vote := &model.Vote{
		PollId:      pollId,
		Voter:       voter,
		OptionIndex: optionIndex,
		AmountPaid:  amountPaid,
		CreatedTime: r.now().Unix(),
	}
	err = r.dataProvider.RecordVote(vote, r.now().Unix())
	if err != nil {
		r.rejected()
		return nil, err
	}
	if r.metricService != nil {
		r.metricService.IncRecordedVote()
	}
	return vote, nil
}

// QuoteNextVote is the read-only price preview. It shares the pricing engine
// with the authoritative write path, so the two can never diverge.
func (r *Recorder) QuoteNextVote(pollId uint64) (sdkmath.Int, error) {
	poll, err := r.dataProvider.GetPollByPollId(pollId)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if r.now().Unix() >= poll.EndTime {
		return sdkmath.ZeroInt(), common.ErrPollEnded
	}
	if poll.CurrentVotes >= poll.MaxVotes {
		return sdkmath.ZeroInt(), common.ErrPollFull
	}
	return pricing.NextVotePrice(util.MustAmount(poll.BasePrice), poll.CurrentVotes, poll.MaxVotes)
}

// CreatePoll registers an off-chain poll after validating its parameters and
// the creator's deposit against the configured minimum.
func (r *Recorder) CreatePoll(creator string, options []string, basePrice, deposit string,
	maxVotes, requiredCredibility uint64, endTime int64,
) (*model.Poll, error) {
	if !util.IsValidAddress(creator) {
		return nil, fmt.Errorf("%w: bad creator address %s", common.ErrInvalidPoll, creator)
	}
	if len(options) < 2 || len(options) > 5 {
		return nil, fmt.Errorf("%w: need 2-5 options, got %d", common.ErrInvalidPoll, len(options))
	}
	for _, label := range options {
		if !util.ValidOptionLabel(label) {
			return nil, fmt.Errorf("%w: option label contains a reserved character", common.ErrInvalidPoll)
		}
	}
	if maxVotes == 0 {
		return nil, fmt.Errorf("%w: max votes must be positive", common.ErrInvalidPoll)
	}
	base, err := util.ParseAmount(basePrice)
	if err != nil || !base.IsPositive() {
		return nil, fmt.Errorf("%w: base price must be positive", common.ErrInvalidPoll)
	}
	if endTime <= r.now().Unix() {
		return nil, fmt.Errorf("%w: end time is in the past", common.ErrInvalidPoll)
	}
	depositAmount, err := util.ParseAmount(deposit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidPoll, err.Error())
	}
	if err := accounting.ValidateCreatorDeposit(depositAmount, r.minDeposit); err != nil {
		return nil, err
	}

	poll := &model.Poll{
		PollId:              uint64(r.now().UnixNano()), // off-chain polls get a locally assigned id
		Creator:             util.NormalizeAddress(creator),
		Options:             util.JoinOptions(options),
		OptionCount:         uint32(len(options)),
		BasePrice:           basePrice,
		MaxVotes:            maxVotes,
		CreatorDeposit:      deposit,
		VoterPool:           "0",
		RequiredCredibility: requiredCredibility,
		EndTime:             endTime,
		OnChain:             false,
		CreatedTime:         r.now().Unix(),
	}
	err = r.dataProvider.SavePoll(poll)
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func (r *Recorder) rejected() {
	if r.metricService != nil {
		r.metricService.IncRejectedVote()
	}
}
