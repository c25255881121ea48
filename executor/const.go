package executor

import "time"

const (
	QueryHeightInterval = 5 * time.Second
	RPCTimeout          = 10 * time.Second
)

// ABI of the BinPoll contract, reduced to what the settler consumes.
const pollContractABIJson = `[
  {"type":"event","name":"PollCreated","inputs":[
    {"name":"pollId","type":"uint256","indexed":true},
    {"name":"creator","type":"address","indexed":true},
    {"name":"basePrice","type":"uint256","indexed":false},
    {"name":"maxVotes","type":"uint256","indexed":false},
    {"name":"creatorDeposit","type":"uint256","indexed":false},
    {"name":"requiredCredibility","type":"uint256","indexed":false},
    {"name":"endTime","type":"uint256","indexed":false},
    {"name":"options","type":"string[]","indexed":false}],"anonymous":false},
  {"type":"event","name":"VoteCast","inputs":[
    {"name":"pollId","type":"uint256","indexed":true},
    {"name":"voter","type":"address","indexed":true},
    {"name":"optionIndex","type":"uint8","indexed":false},
    {"name":"amountPaid","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"function","name":"settlePoll","stateMutability":"nonpayable","inputs":[
    {"name":"pollId","type":"uint256"},
    {"name":"winningOption","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"credibilityOf","stateMutability":"view","inputs":[
    {"name":"voter","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`
