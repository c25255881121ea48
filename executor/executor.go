package executor

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/binpoll/binpoll-settler/config"
	"github.com/binpoll/binpoll-settler/logging"
)

// Executor is the settler's gateway to the BinPoll contract: it scans logs
// for the chain monitor, answers credibility lookups for the vote recorder
// and pushes settle transactions for the payout submitter.
type Executor struct {
	config      *config.Config
	clients     []*ethclient.Client
	privateKey  *ecdsa.PrivateKey
	address     ethcommon.Address
	contract    ethcommon.Address
	contractABI abi.ABI

	mtx       sync.RWMutex
	height    uint64
	clientIdx int
}

func NewExecutor(cfg *config.Config) *Executor {
	privKey := getChainPrivateKey(&cfg.ChainConfig)
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privKey, "0x"))
	if err != nil {
		panic(fmt.Sprintf("invalid chain private key, err=%+v", err))
	}

	clients := make([]*ethclient.Client, 0, len(cfg.ChainConfig.RPCAddrs))
	for _, addr := range cfg.ChainConfig.RPCAddrs {
		client, err := ethclient.Dial(addr)
		if err != nil {
			panic(fmt.Sprintf("dial rpc %s error, err=%+v", addr, err))
		}
		clients = append(clients, client)
	}

	return &Executor{
		config:      cfg,
		clients:     clients,
		privateKey:  key,
		address:     crypto.PubkeyToAddress(key.PublicKey),
		contract:    ethcommon.HexToAddress(cfg.ChainConfig.ContractAddress),
		contractABI: PollContractABI(),
	}
}

var parsedContractABI *abi.ABI

// PollContractABI returns the parsed BinPoll contract ABI.
func PollContractABI() abi.ABI {
	if parsedContractABI == nil {
		parsed, err := abi.JSON(strings.NewReader(pollContractABIJson))
		if err != nil {
			panic(err)
		}
		parsedContractABI = &parsed
	}
	return *parsedContractABI
}

func getChainPrivateKey(cfg *config.ChainConfig) string {
	if cfg.KeyType == config.KeyTypeAWSPrivateKey {
		result, err := config.GetSecret(cfg.AWSSecretName, cfg.AWSRegion)
		if err != nil {
			panic(err)
		}
		return result
	}
	return cfg.PrivateKey
}

func (e *Executor) client() *ethclient.Client {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.clients[e.clientIdx]
}

// switchClient rotates to the next rpc endpoint after a failure.
func (e *Executor) switchClient() {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.clientIdx = (e.clientIdx + 1) % len(e.clients)
	logging.Logger.Infof("executor switched to rpc endpoint %d", e.clientIdx)
}

// UpdateCachedHeightLoop keeps the latest block height cached so hot paths
// never block on an rpc call.
func (e *Executor) UpdateCachedHeightLoop() {
	ticker := time.NewTicker(QueryHeightInterval)
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
		height, err := e.client().BlockNumber(ctx)
		cancel()
		if err != nil {
			logging.Logger.Errorf("executor failed to query block height, err=%s", err.Error())
			e.switchClient()
			continue
		}
		e.mtx.Lock()
		e.height = height
		e.mtx.Unlock()
	}
}

func (e *Executor) GetCachedBlockHeight() uint64 {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.height
}

func (e *Executor) GetBlockTime(height uint64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	defer cancel()
	header, err := e.client().HeaderByNumber(ctx, new(big.Int).SetUint64(height))
	if err != nil {
		return 0, err
	}
	return int64(header.Time), nil
}

// GetPollLogs returns the BinPoll contract logs in [fromHeight, toHeight].
func (e *Executor) GetPollLogs(fromHeight, toHeight uint64) ([]ethtypes.Log, error) {
	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	defer cancel()
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromHeight),
		ToBlock:   new(big.Int).SetUint64(toHeight),
		Addresses: []ethcommon.Address{e.contract},
		Topics: [][]ethcommon.Hash{{
			e.contractABI.Events["PollCreated"].ID,
			e.contractABI.Events["VoteCast"].ID,
		}},
	}
	logs, err := e.client().FilterLogs(ctx, query)
	if err != nil {
		e.switchClient()
		return nil, err
	}
	return logs, nil
}

func (e *Executor) ContractABI() abi.ABI {
	return e.contractABI
}

// GetCredibility reads a voter's reputation score from the contract.
func (e *Executor) GetCredibility(voter string) (uint64, error) {
	data, err := e.contractABI.Pack("credibilityOf", ethcommon.HexToAddress(voter))
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	defer cancel()
	res, err := e.client().CallContract(ctx, ethereum.CallMsg{To: &e.contract, Data: data}, nil)
	if err != nil {
		e.switchClient()
		return 0, err
	}
	values, err := e.contractABI.Unpack("credibilityOf", res)
	if err != nil {
		return 0, err
	}
	score, ok := values[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected credibility result %+v", values)
	}
	return score.Uint64(), nil
}

// SubmitSettleTx sends the settle transaction that makes the contract pay out
// winners, creator fee and platform fee for the given poll.
func (e *Executor) SubmitSettleTx(pollId uint64, winningOption uint32) (string, error) {
	data, err := e.contractABI.Pack("settlePoll", new(big.Int).SetUint64(pollId), uint8(winningOption))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	defer cancel()
	client := e.client()

	nonce, err := client.PendingNonceAt(ctx, e.address)
	if err != nil {
		e.switchClient()
		return "", err
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		e.switchClient()
		return "", err
	}

	tx := ethtypes.NewTransaction(nonce, e.contract, big.NewInt(0), e.config.ChainConfig.GasLimit, gasPrice, data)
	chainId := new(big.Int).SetUint64(e.config.ChainConfig.ChainId)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainId), e.privateKey)
	if err != nil {
		return "", err
	}

	err = client.SendTransaction(ctx, signedTx)
	if err != nil {
		return "", err
	}
	return signedTx.Hash().Hex(), nil
}

// IsTxConfirmed reports whether the transaction has a successful receipt.
func (e *Executor) IsTxConfirmed(txHash string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
	defer cancel()
	receipt, err := e.client().TransactionReceipt(ctx, ethcommon.HexToHash(txHash))
	if err != nil {
		if err == ethereum.NotFound {
			return false, nil
		}
		return false, err
	}
	return receipt.Status == ethtypes.ReceiptStatusSuccessful, nil
}
