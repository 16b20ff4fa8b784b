// Package swapapi orchestrates swap orders and exposes query surfaces
// shared by the rest and json-rpc servers.
package swapapi

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/notify"
	"github.com/tonswap/TON-EVM-Bridge/params"
	"github.com/tonswap/TON-EVM-Bridge/queue"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
	"github.com/tonswap/TON-EVM-Bridge/worker"
)

var (
	swapStore   SwapStore   = mongoSwapStore{}
	walletStore WalletStore = mongoWalletStore{}

	scheduler queue.Scheduler
	notifier  *notify.Notifier

	getBridge = tokens.GetBridge

	nowFunc = func() int64 { return time.Now().Unix() }
)

// Init wire the orchestrator to the job scheduler and the event hub
func Init(s queue.Scheduler, n *notify.Notifier) {
	scheduler = s
	notifier = n
}

// CreateSwap place a swap order: reserve a deposit wallet, persist the
// swap and schedule the deposit scan.
func CreateSwap(args *CreateSwapArgs) (*SwapView, error) {
	srcChain := strings.ToUpper(args.SourceChain)
	if !tokens.IsSupportedChain(srcChain) {
		return nil, tokens.ErrUnsupportedChain
	}
	destChain := tokens.OppositeChain(srcChain)
	pair := tokens.GetTokenPairConfig(args.PairID)
	if pair == nil {
		return nil, tokens.ErrTokenPairNotFound
	}
	srcToken := pair.TokenOnChain(srcChain)
	destToken := pair.TokenOnChain(destChain)
	if args.DestinationAddress == "" {
		return nil, errors.New("empty destination address")
	}

	value, err := common.GetBigIntFromStr(args.Value)
	if err != nil {
		return nil, tokens.ErrWrongSwapValue
	}
	if err = tokens.CheckSwapValue(value, srcToken); err != nil {
		return nil, err
	}

	serverCfg := params.GetServerConfig()
	if count, errCount := swapStore.CountPendingSwapsOfIP(args.Requester); errCount == nil {
		if count >= serverCfg.MaxPendingSwapsPerIP {
			return nil, tokens.ErrTooManyPendingSwaps
		}
	}

	swapped, fee, err := tokens.SplitAmount(value, srcToken)
	if err != nil {
		return nil, err
	}
	destAmount := tokens.ConvertDecimals(swapped, *srcToken.Decimals, *destToken.Decimals)

	srcBridge := getBridge(srcChain)
	destBridge := getBridge(destChain)
	if srcBridge == nil || destBridge == nil {
		return nil, tokens.ErrNoBridgeForChain
	}
	scanHeight, err := srcBridge.LatestBlockNumber()
	if err != nil {
		return nil, err
	}

	destWallet, err := allocateDestWallet(destBridge.ChainConfig(), destChain, destToken, destAmount)
	if err != nil {
		return nil, err
	}
	collectorWallet, err := walletStore.FindBestMatchWallet(srcChain, mongodb.WalletTypeCollector, nil, false, false)
	if err != nil {
		return nil, tokens.ErrNoAvailableWallet
	}

	// jetton deposits arrive on the wallet's conjugated sub-account
	srcNeedsConjugated := srcChain == tokens.ChainTON && srcToken.ContractAddress != ""
	sourceWallet, err := walletStore.ReserveBestMatchWallet(srcChain, mongodb.WalletTypeTransferer, srcNeedsConjugated)
	if err != nil {
		if errors.Is(err, mongodb.ErrWalletNotFound) {
			return nil, tokens.ErrNoAvailableWallet
		}
		return nil, err
	}

	destConjAddress := ""
	if destChain == tokens.ChainTON && destToken.ContractAddress != "" {
		destConjAddress, err = destBridge.ConjugatedAddress(args.DestinationAddress, destToken.ContractAddress)
		if err != nil {
			releaseReservedWallet(sourceWallet.WalletID)
			return nil, err
		}
	}

	swapID := uuid.NewString()
	orderedAt := nowFunc()
	swap := &mongodb.MgoSwap{
		SwapID:          swapID,
		ShortID:         shortSwapID(swapID),
		PairID:          pair.PairID,
		SrcChain:        srcChain,
		DestChain:       destChain,
		SrcToken:        srcToken.Symbol,
		DestToken:       destToken.Symbol,
		SourceWallet:    sourceWallet.WalletID,
		DestWallet:      destWallet.WalletID,
		CollectorWallet: collectorWallet.WalletID,
		SourceAmount:    value.String(),
		DestAddress:     args.DestinationAddress,
		DestConjAddress: destConjAddress,
		DestAmount:      destAmount.String(),
		Fee:             fee.String(),
		Status:          mongodb.SwapPending,
		StatusCode:      tokens.CodeNone,
		IPAddress:       args.Requester,
		OrderedAt:       orderedAt,
		ExpiresAt:       orderedAt + serverCfg.SwapTTLSeconds,
	}
	if err = swapStore.AddSwap(swap); err != nil {
		releaseReservedWallet(sourceWallet.WalletID)
		return nil, err
	}

	payload := &worker.SwapJobPayload{
		SwapID:      swapID,
		BlockHeight: scanHeight,
		LivesRemain: serverCfg.DepositScanLives,
	}
	_, err = scheduler.Enqueue(worker.QueueName(srcChain, destChain), worker.JobSwapConfirm, payload, &queue.Options{Priority: 1})
	if err != nil {
		log.Error("schedule deposit scan failed", "swapID", swapID, "err", err)
		_ = swapStore.UpdateSwapStatus(swapID, mongodb.SwapFailed, tokens.CodeEnqueueFailed, "schedule deposit scan failed")
		releaseReservedWallet(sourceWallet.WalletID)
		return nil, err
	}

	log.Info("create swap success", "swapID", swapID, "pairID", pair.PairID,
		"srcChain", srcChain, "value", swap.SourceAmount, "destAmount", swap.DestAmount,
		"depositWallet", sourceWallet.WalletID, "scanHeight", scanHeight)
	emitEvent(swapID, mongodb.SwapPending, tokens.CodeNone)

	view := convertMgoSwapToSwapView(swap)
	view.DepositAddress = sourceWallet.Address
	view.DepositConjAddress = sourceWallet.ConjAddress
	return view, nil
}

func allocateDestWallet(destChainCfg *tokens.ChainConfig, destChain string, destToken *tokens.TokenConfig, destAmount *big.Int) (*mongodb.MgoWallet, error) {
	if destChainCfg.IssueByMint {
		wallet, err := walletStore.FindBestMatchWallet(destChain, mongodb.WalletTypeMinter, nil, false, false)
		if err != nil {
			return nil, tokens.ErrNoAvailableWallet
		}
		return wallet, nil
	}
	needConjugated := destChain == tokens.ChainTON && destToken.ContractAddress != ""
	wallet, err := walletStore.FindBestMatchWallet(destChain, mongodb.WalletTypeTransferer, destAmount, false, needConjugated)
	if err != nil {
		return nil, tokens.ErrNoAvailableWallet
	}
	return wallet, nil
}

// CancelSwap cancel a swap that still awaits its deposit
func CancelSwap(swapID string) (*SwapView, error) {
	err := swapStore.UpdateSwapStatus(swapID, mongodb.SwapCanceled, tokens.CodeCanceledByUser, "canceled by user")
	if err != nil {
		if !errors.Is(err, mongodb.ErrForbidStatusChange) {
			return nil, err
		}
		swap, errFind := swapStore.FindSwap(swapID)
		if errFind != nil {
			return nil, errFind
		}
		if swap.Status == mongodb.SwapCompleted {
			return nil, tokens.ErrSwapAlreadyCompleted
		}
		return nil, tokens.ErrSwapInProcessing
	}

	swap, err := swapStore.FindSwap(swapID)
	if err != nil {
		return nil, err
	}
	if swap.SourceWallet != "" {
		releaseReservedWallet(swap.SourceWallet)
	}
	log.Info("cancel swap success", "swapID", swapID)
	emitEvent(swapID, mongodb.SwapCanceled, tokens.CodeCanceledByUser)
	return convertMgoSwapToSwapView(swap), nil
}

// GetSwap query one swap by id
func GetSwap(swapID string) (*SwapView, error) {
	swap, err := swapStore.FindSwap(swapID)
	if err != nil {
		return nil, err
	}
	return convertMgoSwapToSwapView(swap), nil
}

// SearchSwapsByShortID query swaps by short id
func SearchSwapsByShortID(shortID string) ([]*SwapView, error) {
	swaps, err := swapStore.FindSwapsByShortID(shortID)
	if err != nil {
		return nil, err
	}
	return convertMgoSwapsToSwapViews(swaps), nil
}

// SubscribeSwapEvents subscribe lifecycle events of one swap, or all
// swaps when swapID is empty
func SubscribeSwapEvents(swapID string) (<-chan notify.Event, func()) {
	return notifier.Subscribe(swapID)
}

// GetServerInfo server identity, version and supported pairs
func GetServerInfo() *ServerInfo {
	return &ServerInfo{
		Identifier: params.GetIdentifier(),
		Version:    params.VersionWithMeta,
		PairIDs:    tokens.GetAllPairIDs(),
	}
}

func releaseReservedWallet(walletID string) {
	if err := walletStore.ReleaseWallet(walletID); err != nil {
		log.Error("release reserved wallet failed", "walletID", walletID, "err", err)
	}
}

func emitEvent(swapID string, status mongodb.SwapStatus, statusCode int) {
	if notifier == nil {
		return
	}
	notifier.Publish(notify.Event{
		SwapID:     swapID,
		Status:     status,
		StatusMsg:  status.String(),
		StatusCode: statusCode,
	})
}

func shortSwapID(swapID string) string {
	compact := strings.ReplaceAll(swapID, "-", "")
	if len(compact) > 8 {
		return compact[:8]
	}
	return compact
}
