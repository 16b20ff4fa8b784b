package worker

import (
	"errors"
	"fmt"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// processSwapStable track confirmations of the matched deposit until the
// source chain's required count is reached, then hand over to transfer.
func processSwapStable(job *queue.Job, payload *SwapJobPayload) error {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		if errors.Is(err, mongodb.ErrSwapNotFound) {
			logWorkerError("stable", "swap of job not found", err, "swapID", payload.SwapID)
			return nil
		}
		return err
	}
	if swap.Status != mongodb.SwapConfirmed {
		logWorkerTrace("stable", "stale job, swap not confirmed", "swapID", swap.SwapID, "status", swap.Status.String())
		return nil
	}

	// a deposit reorged away never reaches the required count, the
	// extended deadline bounds the polling
	if now() > swap.ExpiresAt+swapGraceSeconds {
		terminalizeSwap(swap, mongodb.SwapExpired, tokens.CodeExpiredBeforeTransfer, "swap expired awaiting deposit stability")
		return nil
	}

	bridge := getBridge(swap.SrcChain)
	if bridge == nil {
		return tokens.ErrNoBridgeForChain
	}
	required := *bridge.ChainConfig().Confirmations

	txStatus, err := bridge.GetTransactionStatus(swap.SourceTxID)
	if err != nil {
		if tokens.IsRPCQueryOrNotFoundError(err) {
			// deposit may have been reorged away, keep polling
			logWorkerTrace("stable", "deposit tx not queryable yet", "swapID", swap.SwapID, "txID", swap.SourceTxID, "err", err)
			return enqueueSwapJob(job.Queue, JobSwapStable, payload, scanDelay(bridge), pollJobAttempts)
		}
		return err
	}
	if txStatus.Failed {
		terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, "deposit transaction reverted")
		return nil
	}

	confirmations := common.MinUint64(txStatus.Confirmations, required)
	if confirmations > swap.Confirmations {
		if errUp := swapStore.UpdateSwapConfirmations(swap.SwapID, confirmations); errUp != nil {
			return errUp
		}
		emitSwapConfirmations(swap.SwapID, confirmations, required)
		logWorkerTrace("stable", "confirmations updated", "swapID", swap.SwapID, "confirmations", confirmations, "required", required)
	}

	if confirmations < required {
		return enqueueSwapJob(job.Queue, JobSwapStable, payload, scanDelay(bridge), pollJobAttempts)
	}

	logWorker("stable", "deposit is stable", "swapID", swap.SwapID, "confirmations", confirmations)
	next := &SwapJobPayload{SwapID: swap.SwapID, BlockHeight: payload.BlockHeight}
	return enqueueSwapJob(job.Queue, JobSwapTransfer, next, 0, transferAttempts)
}

func onStableExhausted(payload *SwapJobPayload, cause error) {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		logWorkerError("stable", "swap of exhausted job not found", err, "swapID", payload.SwapID)
		return
	}
	memo := fmt.Sprintf("confirmation tracking errors exhausted: %v", cause)
	terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, memo)
}
