package worker

import (
	"errors"
	"math/big"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// processSwapCollect sweep the fee from the source pool wallet into the
// collector wallet. Runs after completion with its own bounded retries,
// exhaustion leaves the swap Completed and only logs.
func processSwapCollect(job *queue.Job, payload *SwapJobPayload) error {
	swap, err := swapStore.FindSwap(payload.SwapID)
	if err != nil {
		if errors.Is(err, mongodb.ErrSwapNotFound) {
			logWorkerError("collect", "swap of job not found", err, "swapID", payload.SwapID)
			return nil
		}
		return err
	}
	if swap.Status != mongodb.SwapCompleted {
		logWorkerTrace("collect", "stale job, swap not completed", "swapID", swap.SwapID, "status", swap.Status.String())
		return nil
	}
	if swap.CollectorTxID != "" {
		logWorkerTrace("collect", "fee already collected", "swapID", swap.SwapID, "collectorTxID", swap.CollectorTxID)
		return nil
	}

	fee, err := common.GetBigIntFromStr(swap.Fee)
	if err != nil {
		logWorkerError("collect", "stored fee is not a number", err, "swapID", swap.SwapID, "fee", swap.Fee)
		return nil
	}
	if fee.Sign() == 0 {
		logWorkerTrace("collect", "zero fee, nothing to collect", "swapID", swap.SwapID)
		return nil
	}

	bridge := getBridge(swap.SrcChain)
	if bridge == nil {
		return tokens.ErrNoBridgeForChain
	}
	srcToken := tokens.GetTokenConfig(swap.PairID, swap.SrcChain)
	if srcToken == nil {
		logWorkerError("collect", "token pair config is gone", nil, "swapID", swap.SwapID, "pairID", swap.PairID)
		return nil
	}
	sourceWallet, err := walletStore.FindWallet(swap.SourceWallet)
	if err != nil {
		return err
	}
	collectorWallet, err := walletStore.FindWallet(swap.CollectorWallet)
	if err != nil {
		return err
	}

	args := &tokens.TransferArgs{
		SwapID:          swap.SwapID,
		TokenContract:   srcToken.ContractAddress,
		From:            sourceWallet.Address,
		ConjugatedFrom:  sourceWallet.ConjAddress,
		To:              collectorWallet.Address,
		ConjugatedTo:    collectorWallet.ConjAddress,
		Value:           fee,
		SealedSecretKey: sourceWallet.SecretKey,
		Memo:            swap.SwapID,
	}
	txID, err := bridge.SendTransfer(args)
	if err != nil {
		logWorkerError("collect", "fee transfer failed", err, "swapID", swap.SwapID)
		return err
	}

	if errUp := swapStore.UpdateSwapCollect(swap.SwapID, txID); errUp != nil {
		logWorkerError("collect", "record collector txid failed", errUp, "swapID", swap.SwapID, "collectorTxID", txID)
	}
	if errDebit := walletStore.AddWalletBalance(swap.SourceWallet, new(big.Int).Neg(fee)); errDebit != nil {
		logWorkerError("collect", "debit source wallet failed", errDebit, "swapID", swap.SwapID, "walletID", swap.SourceWallet)
	}
	if errCredit := walletStore.AddWalletBalance(swap.CollectorWallet, fee); errCredit != nil {
		logWorkerError("collect", "credit collector wallet failed", errCredit, "swapID", swap.SwapID, "walletID", swap.CollectorWallet)
	}
	logWorker("collect", "fee collected", "swapID", swap.SwapID, "collectorTxID", txID, "fee", swap.Fee)
	return nil
}

func onCollectExhausted(payload *SwapJobPayload, cause error) {
	// the swap itself stays Completed, the fee sweep can be redone by hand
	logWorkerError("collect", "fee collection attempts exhausted", cause, "swapID", payload.SwapID)
}
