// Package worker drives swap lifecycle jobs claimed from the durable
// queue through the confirm, stable, transfer and collect stages.
package worker

import (
	"fmt"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/notify"
	"github.com/tonswap/TON-EVM-Bridge/params"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

var (
	swapStore   SwapStore   = mongoSwapStore{}
	walletStore WalletStore = mongoWalletStore{}

	jobQueue queue.Queue
	notifier *notify.Notifier

	getBridge = tokens.GetBridge

	// scheduling knobs, overridden from config in StartWork
	claimInterval    = 3 * time.Second
	retryBackoff     = 10 * time.Second
	swapGraceSeconds = int64(300)
	transferAttempts = 5
	collectAttempts  = 10

	stopWorkChan = make(chan struct{})
)

type jobHandler struct {
	handle      func(job *queue.Job, payload *SwapJobPayload) error
	onExhausted func(payload *SwapJobPayload, cause error)
}

var jobHandlers = map[string]jobHandler{
	JobSwapConfirm:  {handle: processSwapConfirm, onExhausted: onConfirmExhausted},
	JobSwapStable:   {handle: processSwapStable, onExhausted: onStableExhausted},
	JobSwapTransfer: {handle: processSwapTransfer, onExhausted: onTransferExhausted},
	JobSwapCollect:  {handle: processSwapCollect, onExhausted: onCollectExhausted},
}

// StartWork start one claim loop per swap direction queue
func StartWork(q queue.Queue, n *notify.Notifier) {
	jobQueue = q
	notifier = n

	serverCfg := params.GetServerConfig()
	if serverCfg != nil {
		if serverCfg.Queue.ClaimIntervalMs > 0 {
			claimInterval = time.Duration(serverCfg.Queue.ClaimIntervalMs) * time.Millisecond
		}
		if serverCfg.Queue.RetryBackoffSeconds > 0 {
			retryBackoff = time.Duration(serverCfg.Queue.RetryBackoffSeconds) * time.Second
		}
		if serverCfg.Queue.TransferAttempts > 0 {
			transferAttempts = serverCfg.Queue.TransferAttempts
		}
		if serverCfg.Queue.CollectAttempts > 0 {
			collectAttempts = serverCfg.Queue.CollectAttempts
		}
		if serverCfg.SwapGraceSeconds > 0 {
			swapGraceSeconds = serverCfg.SwapGraceSeconds
		}
	}

	log.Info("start swap pipeline work", "queues", AllQueueNames())
	for _, queueName := range AllQueueNames() {
		go consumeLoop(queueName)
	}
}

// StopWork stop all claim loops
func StopWork() {
	close(stopWorkChan)
}

func consumeLoop(queueName string) {
	logWorker("consume", "start queue consumer", "queue", queueName)
	for {
		job, err := jobQueue.Claim(queueName)
		if err != nil {
			logWorkerError("consume", "claim job failed", err, "queue", queueName)
			if !restInJob(claimInterval, stopWorkChan) {
				return
			}
			continue
		}
		if job == nil {
			if !restInJob(claimInterval, stopWorkChan) {
				return
			}
			continue
		}
		handleJob(job)
		select {
		case <-stopWorkChan:
			return
		default:
		}
	}
}

func handleJob(job *queue.Job) {
	handler, exist := jobHandlers[job.Type]
	if !exist {
		logWorkerError("consume", "unknown job type", nil, "queue", job.Queue, "jobType", job.Type, "jobID", job.ID)
		_ = jobQueue.Fail(job.ID, fmt.Errorf("unknown job type %v", job.Type))
		return
	}
	var payload SwapJobPayload
	err := job.DecodePayload(&payload)
	if err != nil {
		logWorkerError("consume", "decode job payload failed", err, "jobID", job.ID, "jobType", job.Type)
		_ = jobQueue.Fail(job.ID, err)
		return
	}

	err = handler.handle(job, &payload)
	if err == nil {
		if errAck := jobQueue.Ack(job.ID); errAck != nil {
			logWorkerError("consume", "ack job failed", errAck, "jobID", job.ID)
		}
		return
	}

	if job.AttemptsLeft <= 1 {
		logWorkerError("consume", "job attempts exhausted", err, "jobID", job.ID, "jobType", job.Type, "swapID", payload.SwapID)
		_ = jobQueue.Fail(job.ID, err)
		if handler.onExhausted != nil {
			handler.onExhausted(&payload, err)
		}
		return
	}
	logWorkerTrace("consume", "retry job later", "jobID", job.ID, "jobType", job.Type, "swapID", payload.SwapID, "err", err)
	if errRetry := jobQueue.Retry(job.ID, job.Backoff, err); errRetry != nil {
		logWorkerError("consume", "retry job failed", errRetry, "jobID", job.ID)
	}
}
