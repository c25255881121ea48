package monitor

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/binpoll/binpoll-settler/db/model"
	"github.com/binpoll/binpoll-settler/util"
)

// Converter turns BinPoll contract logs into db rows.
type Converter struct {
	contractABI abi.ABI
}

func NewConverter(contractABI abi.ABI) *Converter {
	return &Converter{contractABI: contractABI}
}

// ParseLog decodes one contract log. Exactly one of the poll/vote results is
// non-nil for a recognized event; both are nil for foreign logs.
func (c *Converter) ParseLog(log ethtypes.Log, blockTime int64) (*model.Poll, *model.Vote, error) {
	if len(log.Topics) == 0 {
		return nil, nil, nil
	}
	switch log.Topics[0] {
	case c.contractABI.Events["PollCreated"].ID:
		poll, err := c.parsePollCreated(log, blockTime)
		return poll, nil, err
	case c.contractABI.Events["VoteCast"].ID:
		vote, err := c.parseVoteCast(log, blockTime)
		return nil, vote, err
	}
	return nil, nil, nil
}

func (c *Converter) parsePollCreated(log ethtypes.Log, blockTime int64) (*model.Poll, error) {
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("malformed PollCreated log, %d topics", len(log.Topics))
	}
	values, err := c.contractABI.Unpack("PollCreated", log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 6 {
		return nil, fmt.Errorf("malformed PollCreated log, %d data fields", len(values))
	}
	basePrice, ok1 := values[0].(*big.Int)
	maxVotes, ok2 := values[1].(*big.Int)
	creatorDeposit, ok3 := values[2].(*big.Int)
	requiredCredibility, ok4 := values[3].(*big.Int)
	endTime, ok5 := values[4].(*big.Int)
	options, ok6 := values[5].([]string)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil, fmt.Errorf("malformed PollCreated log data %+v", values)
	}

	return &model.Poll{
		PollId:              log.Topics[1].Big().Uint64(),
		Creator:             util.NormalizeAddress(log.Topics[2].Hex()),
		Options:             util.JoinOptions(options),
		OptionCount:         uint32(len(options)),
		BasePrice:           sdkmath.NewIntFromBigInt(basePrice).String(),
		MaxVotes:            maxVotes.Uint64(),
		CreatorDeposit:      sdkmath.NewIntFromBigInt(creatorDeposit).String(),
		VoterPool:           "0",
		RequiredCredibility: requiredCredibility.Uint64(),
		EndTime:             endTime.Int64(),
		OnChain:             true,
		Height:              log.BlockNumber,
		CreatedTime:         blockTime,
	}, nil
}

func (c *Converter) parseVoteCast(log ethtypes.Log, blockTime int64) (*model.Vote, error) {
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("malformed VoteCast log, %d topics", len(log.Topics))
	}
	values, err := c.contractABI.Unpack("VoteCast", log.Data)
	if err != nil {
		return nil, err
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("malformed VoteCast log, %d data fields", len(values))
	}
	optionIndex, ok1 := values[0].(uint8)
	amountPaid, ok2 := values[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("malformed VoteCast log data %+v", values)
	}

	return &model.Vote{
		PollId:      log.Topics[1].Big().Uint64(),
		Voter:       util.NormalizeAddress(log.Topics[2].Hex()),
		OptionIndex: uint32(optionIndex),
		AmountPaid:  sdkmath.NewIntFromBigInt(amountPaid).String(),
		Height:      log.BlockNumber,
		CreatedTime: blockTime,
	}, nil
}
