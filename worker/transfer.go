package worker

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// processSwapTransfer send the destination amount out. A ton destination
// is issued by minting jettons, an eth destination is paid from the pool
// wallet allocated at order time.
func processSwapTransfer(job *queue.Job, payload *SwapJobPayload) error {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		if errors.Is(err, mongodb.ErrSwapNotFound) {
			logWorkerError("transfer", "swap of job not found", err, "swapID", payload.SwapID)
			return nil
		}
		return err
	}
	if swap.Status != mongodb.SwapConfirmed {
		logWorkerTrace("transfer", "stale job, swap not confirmed", "swapID", swap.SwapID, "status", swap.Status.String())
		return nil
	}

	srcBridge := getBridge(swap.SrcChain)
	destBridge := getBridge(swap.DestChain)
	if srcBridge == nil || destBridge == nil {
		return tokens.ErrNoBridgeForChain
	}
	if swap.Confirmations < *srcBridge.ChainConfig().Confirmations {
		logWorkerTrace("transfer", "stale job, deposit not stable", "swapID", swap.SwapID, "confirmations", swap.Confirmations)
		return nil
	}

	if now() > swap.ExpiresAt+swapGraceSeconds {
		terminalizeSwap(swap, mongodb.SwapExpired, tokens.CodeExpiredBeforeTransfer, "swap expired before destination transfer")
		return nil
	}

	destToken := tokens.GetTokenConfig(swap.PairID, swap.DestChain)
	if destToken == nil {
		terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, "token pair config is gone")
		return nil
	}
	destAmount, err := common.GetBigIntFromStr(swap.DestAmount)
	if err != nil {
		terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeInternalError, "stored destination amount is not a number")
		return nil
	}
	wallet, err := walletStore.FindWallet(swap.DestWallet)
	if err != nil {
		return err
	}

	args := &tokens.TransferArgs{
		SwapID:          swap.SwapID,
		TokenContract:   destToken.ContractAddress,
		From:            wallet.Address,
		ConjugatedFrom:  wallet.ConjAddress,
		To:              swap.DestAddress,
		ConjugatedTo:    swap.DestConjAddress,
		Value:           destAmount,
		SealedSecretKey: wallet.SecretKey,
		Memo:            swap.SwapID,
	}
	issueByMint := destBridge.ChainConfig().IssueByMint

	var txID string
	if issueByMint {
		txID, err = destBridge.Mint(args)
	} else {
		txID, err = destBridge.SendTransfer(args)
	}
	if err != nil {
		logWorkerError("transfer", "destination send failed", err, "swapID", swap.SwapID, "mint", issueByMint)
		return err
	}

	err = swapStore.UpdateSwapComplete(swap.SwapID, txID)
	if err != nil {
		// money already moved, never retry the send
		logWorkerError("transfer", "record swap complete failed", err, "swapID", swap.SwapID, "destTxID", txID)
		return nil
	}
	if !issueByMint {
		if errDebit := walletStore.AddWalletBalance(swap.DestWallet, new(big.Int).Neg(destAmount)); errDebit != nil {
			logWorkerError("transfer", "debit destination wallet failed", errDebit, "swapID", swap.SwapID, "walletID", swap.DestWallet)
		}
	}

	logWorker("transfer", "destination transfer sent", "swapID", swap.SwapID, "destTxID", txID, "mint", issueByMint)
	emitSwapEvent(swap.SwapID, mongodb.SwapCompleted, tokens.CodeNone, swap.Confirmations, requiredConfirmations(swap.SrcChain))

	next := &SwapJobPayload{SwapID: swap.SwapID}
	return enqueueSwapJob(job.Queue, JobSwapCollect, next, 0, collectAttempts)
}

func onTransferExhausted(payload *SwapJobPayload, cause error) {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		logWorkerError("transfer", "swap of exhausted job not found", err, "swapID", payload.SwapID)
		return
	}
	memo := fmt.Sprintf("destination send failed: %v", cause)
	terminalizeSwap(swap, mongodb.SwapFailed, tokens.CodeDestinationSendFailed, memo)
}
