package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/binpoll/binpoll-settler/common"
	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/util"
)

type createPollRequest struct {
	Creator             string   `json:"creator" binding:"required"`
	Options             []string `json:"options" binding:"required"`
	BasePrice           string   `json:"base_price" binding:"required"`
	CreatorDeposit      string   `json:"creator_deposit" binding:"required"`
	MaxVotes            uint64   `json:"max_votes" binding:"required"`
	RequiredCredibility uint64   `json:"required_credibility"`
	EndTime             int64    `json:"end_time" binding:"required"`
}

type recordVoteRequest struct {
	Voter       string `json:"voter" binding:"required"`
	OptionIndex uint32 `json:"option_index"`
	AmountPaid  string `json:"amount_paid" binding:"required"`
}

type pollResponse struct {
	PollId              uint64   `json:"poll_id"`
	Creator             string   `json:"creator"`
	Options             []string `json:"options"`
	BasePrice           string   `json:"base_price"`
	MaxVotes            uint64   `json:"max_votes"`
	CurrentVotes        uint64   `json:"current_votes"`
	CreatorDeposit      string   `json:"creator_deposit"`
	VoterPool           string   `json:"voter_pool"`
	RequiredCredibility uint64   `json:"required_credibility"`
	EndTime             int64    `json:"end_time"`
	OnChain             bool     `json:"on_chain"`
	Settled             bool     `json:"settled"`
	WinningOption       *uint32  `json:"winning_option,omitempty"`
}

func toPollResponse(poll *model.Poll) pollResponse {
	res := pollResponse{
		PollId:              poll.PollId,
		Creator:             poll.Creator,
		Options:             util.SplitOptions(poll.Options),
		BasePrice:           poll.BasePrice,
		MaxVotes:            poll.MaxVotes,
		CurrentVotes:        poll.CurrentVotes,
		CreatorDeposit:      poll.CreatorDeposit,
		VoterPool:           poll.VoterPool,
		RequiredCredibility: poll.RequiredCredibility,
		EndTime:             poll.EndTime,
		OnChain:             poll.OnChain,
		Settled:             poll.Settled,
	}
	if poll.Settled {
		winning := poll.WinningOption
		res.WinningOption = &winning
	}
	return res
}

func (s *ApiServer) createPoll(c *gin.Context) {
	var req createPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	poll, err := s.recorder.CreatePoll(req.Creator, req.Options, req.BasePrice, req.CreatorDeposit,
		req.MaxVotes, req.RequiredCredibility, req.EndTime)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toPollResponse(poll))
}

func (s *ApiServer) getPoll(c *gin.Context) {
	pollId, ok := parsePollId(c)
	if !ok {
		return
	}
	poll, err := s.dataProvider.GetPollByPollId(pollId)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPollResponse(poll))
}

func (s *ApiServer) getQuote(c *gin.Context) {
	pollId, ok := parsePollId(c)
	if !ok {
		return
	}
	price, err := s.recorder.QuoteNextVote(pollId)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"poll_id": pollId, "next_vote_price": price.String()})
}

func (s *ApiServer) recordVote(c *gin.Context) {
	pollId, ok := parsePollId(c)
	if !ok {
		return
	}
	var req recordVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vote, err := s.recorder.RecordVote(pollId, req.Voter, req.OptionIndex, req.AmountPaid)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"poll_id":      vote.PollId,
		"voter":        vote.Voter,
		"option_index": vote.OptionIndex,
		"amount_paid":  vote.AmountPaid,
	})
}

func (s *ApiServer) getSettlement(c *gin.Context) {
	pollId, ok := parsePollId(c)
	if !ok {
		return
	}
	settlement, err := s.dataProvider.GetSettlementByPollId(pollId)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"poll_id":           settlement.PollId,
		"winning_option":    settlement.WinningOption,
		"total_winners":     settlement.TotalWinners,
		"reward_per_winner": settlement.RewardPerWinner,
		"total_reward_pool": settlement.TotalRewardPool,
		"platform_fee":      settlement.PlatformFee,
		"creator_fee":       settlement.CreatorFee,
		"creator_refund":    settlement.CreatorRefund,
		"status":            settlement.Status,
		"tx_hash":           settlement.TxHash,
	})
}

func parsePollId(c *gin.Context) (uint64, bool) {
	pollId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return 0, false
	}
	return pollId, true
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidPoll), errors.Is(err, common.ErrInvalidVote):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInsufficientPayment), errors.Is(err, common.ErrInsufficientDeposit):
		return http.StatusPaymentRequired
	case errors.Is(err, common.ErrInsufficientCredibility):
		return http.StatusForbidden
	case errors.Is(err, common.ErrAlreadyVoted), errors.Is(err, common.ErrPollFull),
		errors.Is(err, common.ErrPollEnded), errors.Is(err, common.ErrAlreadySettled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
