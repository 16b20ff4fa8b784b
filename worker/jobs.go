package worker

import (
	"strings"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// attempts granted to self-re-enqueued polling jobs, only spent on
// transient errors since misses re-enqueue explicitly
const pollJobAttempts = 3

// pipeline job types
const (
	JobSwapConfirm  = "swapConfirm"
	JobSwapStable   = "swapStable"
	JobSwapTransfer = "swapTransfer"
	JobSwapCollect  = "swapCollect"
)

// SwapJobPayload carried by every pipeline job
type SwapJobPayload struct {
	SwapID      string `bson:"swapid"`
	BlockHeight uint64 `bson:"blockheight"`
	LivesRemain int64  `bson:"livesremain"`
}

// QueueName pipeline queue of a swap direction, eg. "eth2ton"
func QueueName(srcChain, destChain string) string {
	return strings.ToLower(srcChain) + "2" + strings.ToLower(destChain)
}

// AllQueueNames queues of every supported swap direction
func AllQueueNames() []string {
	return []string{
		QueueName(tokens.ChainETH, tokens.ChainTON),
		QueueName(tokens.ChainTON, tokens.ChainETH),
	}
}

func enqueueSwapJob(queueName, jobType string, payload *SwapJobPayload, delay time.Duration, attempts int) error {
	_, err := jobQueue.Enqueue(queueName, jobType, payload, &queue.Options{
		Delay:    delay,
		Attempts: attempts,
		Backoff:  retryBackoff,
	})
	return err
}
