package worker

import (
	"math/big"

	"github.com/tonswap/TON-EVM-Bridge/mongodb"
)

// SwapStore swap persistence needed by the pipeline
type SwapStore interface {
	FindSwap(swapID string) (*mongodb.MgoSwap, error)
	UpdateSwapStatus(swapID string, status mongodb.SwapStatus, statusCode int, memo string) error
	UpdateSwapConfirm(swapID string, items *mongodb.ConfirmUpdateItems) error
	UpdateSwapConfirmations(swapID string, confirmations uint64) error
	UpdateSwapComplete(swapID, destTxID string) error
	UpdateSwapCollect(swapID, collectorTxID string) error
}

// WalletStore wallet persistence needed by the pipeline
type WalletStore interface {
	FindWallet(walletID string) (*mongodb.MgoWallet, error)
	ReleaseWallet(walletID string) error
	AddWalletBalance(walletID string, delta *big.Int) error
}

type mongoSwapStore struct{}

func (mongoSwapStore) FindSwap(swapID string) (*mongodb.MgoSwap, error) {
	return mongodb.FindSwap(swapID)
}

func (mongoSwapStore) UpdateSwapStatus(swapID string, status mongodb.SwapStatus, statusCode int, memo string) error {
	return mongodb.UpdateSwapStatus(swapID, status, statusCode, memo)
}

func (mongoSwapStore) UpdateSwapConfirm(swapID string, items *mongodb.ConfirmUpdateItems) error {
	return mongodb.UpdateSwapConfirm(swapID, items)
}

func (mongoSwapStore) UpdateSwapConfirmations(swapID string, confirmations uint64) error {
	return mongodb.UpdateSwapConfirmations(swapID, confirmations)
}

func (mongoSwapStore) UpdateSwapComplete(swapID, destTxID string) error {
	return mongodb.UpdateSwapComplete(swapID, destTxID)
}

func (mongoSwapStore) UpdateSwapCollect(swapID, collectorTxID string) error {
	return mongodb.UpdateSwapCollect(swapID, collectorTxID)
}

type mongoWalletStore struct{}

func (mongoWalletStore) FindWallet(walletID string) (*mongodb.MgoWallet, error) {
	return mongodb.FindWallet(walletID)
}

func (mongoWalletStore) ReleaseWallet(walletID string) error {
	return mongodb.ReleaseWallet(walletID)
}

func (mongoWalletStore) AddWalletBalance(walletID string, delta *big.Int) error {
	return mongodb.AddWalletBalance(walletID, delta)
}
