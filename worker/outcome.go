package worker

import (
	"errors"

	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/notify"
)

// terminalizeSwap move a swap to a terminal status. Stale jobs racing an
// already terminal swap are a logged no-op. The source wallet reservation
// is only held while the swap is Pending, so it is released here exactly
// when the swap had not been confirmed yet.
func terminalizeSwap(swap *mongodb.MgoSwap, status mongodb.SwapStatus, statusCode int, memo string) {
	err := swapStore.UpdateSwapStatus(swap.SwapID, status, statusCode, memo)
	if err != nil {
		if errors.Is(err, mongodb.ErrForbidStatusChange) {
			logWorkerTrace("outcome", "swap already terminal", "swapID", swap.SwapID, "status", swap.Status.String())
			return
		}
		logWorkerError("outcome", "update swap status failed", err, "swapID", swap.SwapID, "status", status.String())
		return
	}
	logWorker("outcome", "swap terminalized", "swapID", swap.SwapID, "status", status.String(), "statusCode", statusCode, "memo", memo)

	if swap.Status == mongodb.SwapPending && swap.SourceWallet != "" {
		if errRelease := walletStore.ReleaseWallet(swap.SourceWallet); errRelease != nil {
			logWorkerError("outcome", "release source wallet failed", errRelease, "swapID", swap.SwapID, "walletID", swap.SourceWallet)
		}
	}

	emitSwapEvent(swap.SwapID, status, statusCode, swap.Confirmations, requiredConfirmations(swap.SrcChain))
}

func emitSwapEvent(swapID string, status mongodb.SwapStatus, statusCode int, confirmations, total uint64) {
	if notifier == nil {
		return
	}
	notifier.Publish(notify.Event{
		SwapID:             swapID,
		Status:             status,
		StatusMsg:          status.String(),
		StatusCode:         statusCode,
		Confirmations:      confirmations,
		TotalConfirmations: total,
	})
}

func requiredConfirmations(blockchain string) uint64 {
	bridge := getBridge(blockchain)
	if bridge == nil || bridge.ChainConfig().Confirmations == nil {
		return 0
	}
	return *bridge.ChainConfig().Confirmations
}

func emitSwapConfirmations(swapID string, confirmations, total uint64) {
	if notifier == nil {
		return
	}
	notifier.Publish(notify.Event{
		SwapID:             swapID,
		Status:             mongodb.SwapConfirmed,
		StatusMsg:          mongodb.SwapConfirmed.String(),
		Confirmations:      confirmations,
		TotalConfirmations: total,
	})
}
