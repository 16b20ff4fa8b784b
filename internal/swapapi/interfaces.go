package swapapi

import (
	"math/big"

	"github.com/tonswap/TON-EVM-Bridge/mongodb"
)

// SwapStore swap persistence needed by the orchestrator
type SwapStore interface {
	AddSwap(swap *mongodb.MgoSwap) error
	FindSwap(swapID string) (*mongodb.MgoSwap, error)
	FindSwapsByShortID(shortID string) ([]*mongodb.MgoSwap, error)
	CountPendingSwapsOfIP(ip string) (int64, error)
	UpdateSwapStatus(swapID string, status mongodb.SwapStatus, statusCode int, memo string) error
}

// WalletStore wallet persistence needed by the orchestrator
type WalletStore interface {
	FindWallet(walletID string) (*mongodb.MgoWallet, error)
	FindBestMatchWallet(blockchain string, walletType mongodb.WalletType, minBalance *big.Int, requireUnused, requireConjugated bool) (*mongodb.MgoWallet, error)
	ReserveBestMatchWallet(blockchain string, walletType mongodb.WalletType, requireConjugated bool) (*mongodb.MgoWallet, error)
	ReleaseWallet(walletID string) error
}

type mongoSwapStore struct{}

func (mongoSwapStore) AddSwap(swap *mongodb.MgoSwap) error {
	return mongodb.AddSwap(swap)
}

func (mongoSwapStore) FindSwap(swapID string) (*mongodb.MgoSwap, error) {
	return mongodb.FindSwap(swapID)
}

func (mongoSwapStore) FindSwapsByShortID(shortID string) ([]*mongodb.MgoSwap, error) {
	return mongodb.FindSwapsByShortID(shortID)
}

func (mongoSwapStore) CountPendingSwapsOfIP(ip string) (int64, error) {
	return mongodb.CountPendingSwapsOfIP(ip)
}

func (mongoSwapStore) UpdateSwapStatus(swapID string, status mongodb.SwapStatus, statusCode int, memo string) error {
	return mongodb.UpdateSwapStatus(swapID, status, statusCode, memo)
}

type mongoWalletStore struct{}

func (mongoWalletStore) FindWallet(walletID string) (*mongodb.MgoWallet, error) {
	return mongodb.FindWallet(walletID)
}

func (mongoWalletStore) FindBestMatchWallet(blockchain string, walletType mongodb.WalletType, minBalance *big.Int, requireUnused, requireConjugated bool) (*mongodb.MgoWallet, error) {
	return mongodb.FindBestMatchWallet(blockchain, walletType, minBalance, requireUnused, requireConjugated)
}

func (mongoWalletStore) ReserveBestMatchWallet(blockchain string, walletType mongodb.WalletType, requireConjugated bool) (*mongodb.MgoWallet, error) {
	return mongodb.ReserveBestMatchWallet(blockchain, walletType, requireConjugated)
}

func (mongoWalletStore) ReleaseWallet(walletID string) error {
	return mongodb.ReleaseWallet(walletID)
}
