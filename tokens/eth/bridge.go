package eth

import (
	"encoding/hex"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/keystore"
	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// first topic of `Transfer(address,address,uint256)`
const transferLogTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// Bridge eth bridge
type Bridge struct {
	chainConfig   *tokens.ChainConfig
	gatewayConfig *tokens.GatewayConfig

	cacheLock         sync.Mutex
	cachedBlockNumber uint64
	cachedBlockTime   time.Time
	cachedGasPrice    *big.Int
	cachedGasTime     time.Time
}

// NewCrossChainBridge new eth bridge
func NewCrossChainBridge(chainCfg *tokens.ChainConfig, gatewayCfg *tokens.GatewayConfig) *Bridge {
	return &Bridge{chainConfig: chainCfg, gatewayConfig: gatewayCfg}
}

// ChainConfig get chain config
func (b *Bridge) ChainConfig() *tokens.ChainConfig {
	return b.chainConfig
}

func (b *Bridge) cacheTTL() time.Duration {
	return time.Duration(b.chainConfig.CacheTTLSecond) * time.Second
}

// LatestBlockNumber get latest block number with a short lived cache
func (b *Bridge) LatestBlockNumber() (uint64, error) {
	b.cacheLock.Lock()
	defer b.cacheLock.Unlock()
	if time.Since(b.cachedBlockTime) < b.cacheTTL() && b.cachedBlockNumber != 0 {
		return b.cachedBlockNumber, nil
	}
	var result string
	err := tokens.RPCPost(&result, b.gatewayConfig, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	height, err := parseHexUint64(result)
	if err != nil {
		return 0, err
	}
	b.cachedBlockNumber = height
	b.cachedBlockTime = time.Now()
	return height, nil
}

// GasPrice get suggested gas price with a short lived cache
func (b *Bridge) GasPrice() (*big.Int, error) {
	b.cacheLock.Lock()
	defer b.cacheLock.Unlock()
	if time.Since(b.cachedGasTime) < b.cacheTTL() && b.cachedGasPrice != nil {
		return b.cachedGasPrice, nil
	}
	var result string
	err := tokens.RPCPost(&result, b.gatewayConfig, "eth_gasPrice")
	if err != nil {
		return nil, err
	}
	gasPrice, err := parseHexBig(result)
	if err != nil {
		return nil, err
	}
	b.cachedGasPrice = gasPrice
	b.cachedGasTime = time.Now()
	return gasPrice, nil
}

// ConjugatedAddress eth has no conjugated addresses
func (b *Bridge) ConjugatedAddress(owner, tokenContract string) (string, error) {
	return "", nil
}

// FindDeposit scan one block for an incoming transfer to the given wallet
func (b *Bridge) FindDeposit(address, conjugatedAddress string, blockHeight uint64, tokenContract string) (*tokens.DepositInfo, error) {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	if blockHeight > latest {
		return nil, tokens.ErrBlockNotFound
	}
	if tokenContract != "" {
		return b.findTokenDeposit(address, blockHeight, tokenContract)
	}
	return b.findCoinDeposit(address, blockHeight)
}

func (b *Bridge) findTokenDeposit(address string, blockHeight uint64, tokenContract string) (*tokens.DepositInfo, error) {
	filter := map[string]interface{}{
		"fromBlock": toHexUint64(blockHeight),
		"toBlock":   toHexUint64(blockHeight),
		"address":   tokenContract,
		"topics":    []interface{}{transferLogTopic, nil, addressTopic(address)},
	}
	var logs []*rpcLog
	err := tokens.RPCPost(&logs, b.gatewayConfig, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		if l.Removed || len(l.Topics) != 3 {
			continue
		}
		value, errf := parseHexBig(l.Data)
		if errf != nil || value.Sign() <= 0 {
			continue
		}
		return &tokens.DepositInfo{
			TxID:        l.TransactionHash,
			From:        topicToAddress(l.Topics[1]),
			To:          address,
			Value:       value,
			BlockHeight: blockHeight,
		}, nil
	}
	return nil, tokens.ErrDepositNotFound
}

func (b *Bridge) findCoinDeposit(address string, blockHeight uint64) (*tokens.DepositInfo, error) {
	var block *rpcBlock
	err := tokens.RPCPost(&block, b.gatewayConfig, "eth_getBlockByNumber", toHexUint64(blockHeight), true)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, tokens.ErrBlockNotFound
	}
	blockTime, _ := parseHexUint64(block.Timestamp)
	for _, tx := range block.Transactions {
		if !strings.EqualFold(tx.To, address) {
			continue
		}
		value, errf := parseHexBig(tx.Value)
		if errf != nil || value.Sign() <= 0 {
			continue
		}
		return &tokens.DepositInfo{
			TxID:        tx.Hash,
			From:        tx.From,
			To:          tx.To,
			Value:       value,
			BlockHeight: blockHeight,
			BlockTime:   blockTime,
		}, nil
	}
	return nil, tokens.ErrDepositNotFound
}

// SendTransfer send value from the custodial wallet through the signing gateway
func (b *Bridge) SendTransfer(args *tokens.TransferArgs) (string, error) {
	secretKey, err := keystore.Open(args.SealedSecretKey)
	if err != nil {
		return "", err
	}
	gasPrice, err := b.GasPrice()
	if err != nil {
		return "", err
	}
	params := map[string]interface{}{
		"from":     args.From,
		"to":       args.To,
		"value":    toHexBig(args.Value),
		"contract": args.TokenContract,
		"gasPrice": toHexBig(gasPrice),
		"memo":     args.Memo,
		"key":      hex.EncodeToString(secretKey),
	}
	var txHash string
	err = tokens.RPCPost(&txHash, b.gatewayConfig, "bridge_sendTransfer", params)
	if err != nil {
		log.Warn("eth send transfer failed", "swapID", args.SwapID, "to", args.To, "err", err)
		return "", err
	}
	return txHash, nil
}

// Mint eth side never mints
func (b *Bridge) Mint(args *tokens.TransferArgs) (string, error) {
	return "", tokens.ErrMintNotSupported
}

// GetTransactionStatus get mined height and confirmations of a transaction
func (b *Bridge) GetTransactionStatus(txID string) (*tokens.TxStatus, error) {
	var receipt *rpcReceipt
	err := tokens.RPCPost(&receipt, b.gatewayConfig, "eth_getTransactionReceipt", txID)
	if err != nil {
		return nil, err
	}
	if receipt == nil || receipt.BlockNumber == "" {
		return &tokens.TxStatus{}, nil
	}
	height, err := parseHexUint64(receipt.BlockNumber)
	if err != nil {
		return nil, err
	}
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	status := &tokens.TxStatus{
		BlockHeight: height,
		Failed:      receipt.Status != "" && receipt.Status != "0x1",
	}
	if latest >= height {
		status.Confirmations = latest - height + 1
	}
	return status, nil
}
