package common

import "errors"

// Poll lifecycle and vote acceptance failures. These are expected state
// conflicts, callers report them to the end user instead of retrying.
var (
	ErrPollFull        = errors.New("poll is full")
	ErrPollEnded       = errors.New("poll has ended")
	ErrAlreadyVoted    = errors.New("voter already voted on this poll")
	ErrAlreadySettled  = errors.New("poll is already settled")
	ErrPollStillActive = errors.New("poll has not ended yet")
)

// Fund checks, rejected before any state mutation.
var (
	ErrInsufficientDeposit     = errors.New("creator deposit below minimum")
	ErrInsufficientPayment     = errors.New("payment below current vote price")
	ErrInsufficientCredibility = errors.New("voter credibility below poll requirement")
)

// Malformed input, rejected before any state mutation.
var (
	ErrInvalidPoll = errors.New("invalid poll parameters")
	ErrInvalidVote = errors.New("invalid vote parameters")
)
