package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// processSwapConfirm scan the tracked source block for the deposit into
// the reserved source wallet. Misses advance the scan window by one block
// and spend one life, blocks not yet produced are re-polled for free.
func processSwapConfirm(job *queue.Job, payload *SwapJobPayload) error {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		if errors.Is(err, mongodb.ErrSwapNotFound) {
			logWorkerError("confirm", "swap of job not found", err, "swapID", payload.SwapID)
			return nil
		}
		return err
	}
	if swap.Status != mongodb.SwapPending {
		logWorkerTrace("confirm", "stale job, swap not pending", "swapID", swap.SwapID, "status", swap.Status.String())
		return nil
	}

	bridge := getBridge(swap.SrcChain)
	if bridge == nil {
		return tokens.ErrNoBridgeForChain
	}
	srcToken := tokens.GetTokenConfig(swap.PairID, swap.SrcChain)
	destToken := tokens.GetTokenConfig(swap.PairID, swap.DestChain)
	if srcToken == nil || destToken == nil {
		terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, "token pair config is gone")
		return nil
	}
	wallet, err := walletStore.FindWallet(swap.SourceWallet)
	if err != nil {
		return err
	}

	deposit, err := bridge.FindDeposit(wallet.Address, wallet.ConjAddress, payload.BlockHeight, srcToken.ContractAddress)
	switch {
	case err == nil:
		if isDepositUsed(swap.SrcChain, deposit.TxID) {
			logWorkerTrace("confirm", "deposit txid already matched", "swapID", swap.SwapID, "txID", deposit.TxID)
			return advanceDepositScan(swap, payload)
		}
		return confirmDeposit(swap, deposit, srcToken, destToken)
	case errors.Is(err, tokens.ErrBlockNotFound):
		// block beyond the chain tip, poll again without spending a life
		return enqueueSwapJob(job.Queue, JobSwapConfirm, payload, scanDelay(bridge), pollJobAttempts)
	case errors.Is(err, tokens.ErrDepositNotFound):
		return advanceDepositScan(swap, payload)
	default:
		return err
	}
}

func advanceDepositScan(swap *mongodb.MgoSwap, payload *SwapJobPayload) error {
	lives := payload.LivesRemain - 1
	if lives <= 0 {
		terminalizeSwap(swap, mongodb.SwapExpired, tokens.CodeDepositNotFound, "deposit not found in scan window")
		return nil
	}
	bridge := getBridge(swap.SrcChain)
	next := &SwapJobPayload{
		SwapID:      payload.SwapID,
		BlockHeight: payload.BlockHeight + 1,
		LivesRemain: lives,
	}
	logWorkerTrace("confirm", "deposit not found, advance scan", "swapID", swap.SwapID, "blockHeight", next.BlockHeight, "livesRemain", lives)
	return enqueueSwapJob(QueueName(swap.SrcChain, swap.DestChain), JobSwapConfirm, next, scanDelay(bridge), pollJobAttempts)
}

func confirmDeposit(swap *mongodb.MgoSwap, deposit *tokens.DepositInfo, srcToken, destToken *tokens.TokenConfig) error {
	items := &mongodb.ConfirmUpdateItems{
		SourceAddress: deposit.From,
		SourceTxID:    deposit.TxID,
	}
	declared, err := common.GetBigIntFromStr(swap.SourceAmount)
	if err != nil {
		terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, "stored source amount is not a number")
		return nil
	}
	if deposit.Value.Cmp(declared) != 0 {
		swapped, fee, errRecalc := tokens.RecalcSwapValue(deposit.Value, srcToken)
		if errRecalc != nil {
			memo := fmt.Sprintf("observed amount %v can not be recalculated", deposit.Value)
			terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeSwapNotRecalculated, memo)
			return nil
		}
		destAmount := tokens.ConvertDecimals(swapped, *srcToken.Decimals, *destToken.Decimals)
		items.SourceAmount = deposit.Value.String()
		items.DestAmount = destAmount.String()
		items.Fee = fee.String()
		logWorker("confirm", "recalculated swap value", "swapID", swap.SwapID,
			"declared", swap.SourceAmount, "observed", items.SourceAmount,
			"destAmount", items.DestAmount, "fee", items.Fee)
	}

	err = swapStore.UpdateSwapConfirm(swap.SwapID, items)
	if err != nil {
		if errors.Is(err, mongodb.ErrForbidStatusChange) {
			logWorkerTrace("confirm", "swap left pending concurrently", "swapID", swap.SwapID)
			return nil
		}
		return err
	}
	markDepositUsed(swap.SrcChain, deposit.TxID)

	if errRelease := walletStore.ReleaseWallet(swap.SourceWallet); errRelease != nil {
		logWorkerError("confirm", "release source wallet failed", errRelease, "swapID", swap.SwapID, "walletID", swap.SourceWallet)
	}
	if errCredit := walletStore.AddWalletBalance(swap.SourceWallet, deposit.Value); errCredit != nil {
		logWorkerError("confirm", "credit source wallet failed", errCredit, "swapID", swap.SwapID, "walletID", swap.SourceWallet)
	}

	logWorker("confirm", "deposit confirmed", "swapID", swap.SwapID, "txID", deposit.TxID, "blockHeight", deposit.BlockHeight)
	emitSwapEvent(swap.SwapID, mongodb.SwapConfirmed, tokens.CodeNone, 1, requiredConfirmations(swap.SrcChain))

	next := &SwapJobPayload{SwapID: swap.SwapID, BlockHeight: deposit.BlockHeight}
	bridge := getBridge(swap.SrcChain)
	return enqueueSwapJob(QueueName(swap.SrcChain, swap.DestChain), JobSwapStable, next, scanDelay(bridge), pollJobAttempts)
}

// onConfirmExhausted the scan job died on repeated errors, not on spent
// lives. The swap is still Pending here, so terminalizing also releases
// the reserved deposit wallet.
func onConfirmExhausted(payload *SwapJobPayload, cause error) {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		logWorkerError("confirm", "swap of exhausted job not found", err, "swapID", payload.SwapID)
		return
	}
	memo := fmt.Sprintf("deposit scan errors exhausted: %v", cause)
	terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, memo)
}

func scanDelay(bridge tokens.Bridge) time.Duration {
	if bridge == nil {
		return 5 * time.Second
	}
	blockTime := bridge.ChainConfig().BlockTime
	if blockTime == 0 {
		return 5 * time.Second
	}
	return time.Duration(blockTime) * time.Second
}
