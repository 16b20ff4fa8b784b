package tokens

import (
	"math/big"
	"strings"
	"sync"
)

// DepositInfo an incoming transfer observed on chain
type DepositInfo struct {
	TxID        string `json:"txid"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       *big.Int
	BlockHeight uint64 `json:"blockHeight"`
	BlockTime   uint64 `json:"blockTime"`
}

// TxStatus transaction status on chain
type TxStatus struct {
	BlockHeight   uint64 `json:"blockHeight"`
	BlockTime     uint64 `json:"blockTime"`
	Confirmations uint64 `json:"confirmations"`
	Failed        bool   `json:"failed"`
}

// TransferArgs arguments of an outgoing transfer or mint.
// SecretKey is the wallet's sealed key material, opened only
// inside the bridge at the send boundary.
type TransferArgs struct {
	SwapID          string
	TokenContract   string
	From            string
	ConjugatedFrom  string
	To              string
	ConjugatedTo    string
	Value           *big.Int
	SealedSecretKey []byte
	Memo            string
}

// Bridge is the narrow per-chain client surface the pipeline consumes
type Bridge interface {
	ChainConfig() *ChainConfig
	LatestBlockNumber() (uint64, error)
	// FindDeposit scans the given block for an incoming transfer to the
	// wallet address (or its conjugated token sub-account when set).
	FindDeposit(address, conjugatedAddress string, blockHeight uint64, tokenContract string) (*DepositInfo, error)
	// ConjugatedAddress derives the chain specific token sub-account of an
	// owner address, empty on chains without the concept.
	ConjugatedAddress(owner, tokenContract string) (string, error)
	SendTransfer(args *TransferArgs) (txID string, err error)
	Mint(args *TransferArgs) (txID string, err error)
	GetTransactionStatus(txID string) (*TxStatus, error)
}

var (
	bridges     = make(map[string]Bridge)
	bridgesLock sync.RWMutex
)

// RegisterBridge register the bridge of a blockchain
func RegisterBridge(blockchain string, b Bridge) {
	bridgesLock.Lock()
	defer bridgesLock.Unlock()
	bridges[strings.ToUpper(blockchain)] = b
}

// GetBridge get the registered bridge of a blockchain
func GetBridge(blockchain string) Bridge {
	bridgesLock.RLock()
	defer bridgesLock.RUnlock()
	return bridges[strings.ToUpper(blockchain)]
}
