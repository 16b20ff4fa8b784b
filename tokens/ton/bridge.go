package ton

import (
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/common"
	"github.com/tonswap/TON-EVM-Bridge/keystore"
	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// Bridge ton bridge.
// block heights are masterchain seqno, the conjugated address of a wallet
// is its jetton wallet for the bridged jetton master.
type Bridge struct {
	chainConfig   *tokens.ChainConfig
	gatewayConfig *tokens.GatewayConfig

	cacheLock       sync.Mutex
	cachedSeqno     uint64
	cachedSeqnoTime time.Time
}

// NewCrossChainBridge new ton bridge
func NewCrossChainBridge(chainCfg *tokens.ChainConfig, gatewayCfg *tokens.GatewayConfig) *Bridge {
	return &Bridge{chainConfig: chainCfg, gatewayConfig: gatewayCfg}
}

// ChainConfig get chain config
func (b *Bridge) ChainConfig() *tokens.ChainConfig {
	return b.chainConfig
}

// LatestBlockNumber get latest masterchain seqno with a short lived cache
func (b *Bridge) LatestBlockNumber() (uint64, error) {
	b.cacheLock.Lock()
	defer b.cacheLock.Unlock()
	ttl := time.Duration(b.chainConfig.CacheTTLSecond) * time.Second
	if time.Since(b.cachedSeqnoTime) < ttl && b.cachedSeqno != 0 {
		return b.cachedSeqno, nil
	}
	var result struct {
		Last struct {
			Seqno uint64 `json:"seqno"`
		} `json:"last"`
	}
	err := tokens.RPCPost(&result, b.gatewayConfig, "ton_getMasterchainInfo")
	if err != nil {
		return 0, err
	}
	b.cachedSeqno = result.Last.Seqno
	b.cachedSeqnoTime = time.Now()
	return result.Last.Seqno, nil
}

// ConjugatedAddress derive the jetton wallet address of an owner
func (b *Bridge) ConjugatedAddress(owner, tokenContract string) (string, error) {
	if tokenContract == "" {
		return "", nil
	}
	var result string
	err := tokens.RPCPost(&result, b.gatewayConfig, "ton_getJettonWalletAddress", owner, tokenContract)
	if err != nil {
		return "", err
	}
	return result, nil
}

type rpcMessage struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Value       string `json:"value"`
	Comment     string `json:"comment"`
}

type rpcTransaction struct {
	Hash    string      `json:"hash"`
	Account string      `json:"account"`
	Utime   uint64      `json:"utime"`
	Aborted bool        `json:"aborted"`
	InMsg   *rpcMessage `json:"in_msg"`
}

// FindDeposit scan one masterchain block for an incoming transfer to
// the wallet, a jetton deposit arrives on the conjugated address.
func (b *Bridge) FindDeposit(address, conjugatedAddress string, blockHeight uint64, tokenContract string) (*tokens.DepositInfo, error) {
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	if blockHeight > latest {
		return nil, tokens.ErrBlockNotFound
	}
	watched := address
	if tokenContract != "" && conjugatedAddress != "" {
		watched = conjugatedAddress
	}
	var txs []*rpcTransaction
	err = tokens.RPCPost(&txs, b.gatewayConfig, "ton_getBlockTransactions", blockHeight, watched)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.Aborted || tx.InMsg == nil {
			continue
		}
		if !strings.EqualFold(tx.InMsg.Destination, watched) {
			continue
		}
		value, errf := common.GetBigIntFromStr(tx.InMsg.Value)
		if errf != nil || value.Sign() <= 0 {
			continue
		}
		return &tokens.DepositInfo{
			TxID:        tx.Hash,
			From:        tx.InMsg.Source,
			To:          tx.InMsg.Destination,
			Value:       value,
			BlockHeight: blockHeight,
			BlockTime:   tx.Utime,
		}, nil
	}
	return nil, tokens.ErrDepositNotFound
}

// SendTransfer send value from the custodial wallet through the signing gateway
func (b *Bridge) SendTransfer(args *tokens.TransferArgs) (string, error) {
	return b.submit("bridge_sendTransfer", args)
}

// Mint mint the bridged jetton to the receiver through the minter wallet
func (b *Bridge) Mint(args *tokens.TransferArgs) (string, error) {
	if args.TokenContract == "" {
		return "", tokens.ErrMintNotSupported
	}
	return b.submit("bridge_mintJetton", args)
}

func (b *Bridge) submit(method string, args *tokens.TransferArgs) (string, error) {
	secretKey, err := keystore.Open(args.SealedSecretKey)
	if err != nil {
		return "", err
	}
	params := map[string]interface{}{
		"from":           args.From,
		"conjugatedFrom": args.ConjugatedFrom,
		"to":             args.To,
		"conjugatedTo":   args.ConjugatedTo,
		"value":          args.Value.String(),
		"jettonMaster":   args.TokenContract,
		"memo":           args.Memo,
		"key":            hex.EncodeToString(secretKey),
	}
	var txHash string
	err = tokens.RPCPost(&txHash, b.gatewayConfig, method, params)
	if err != nil {
		log.Warn("ton submit failed", "method", method, "swapID", args.SwapID, "to", args.To, "err", err)
		return "", err
	}
	return txHash, nil
}

// GetTransactionStatus get mined seqno and confirmations of a transaction
func (b *Bridge) GetTransactionStatus(txID string) (*tokens.TxStatus, error) {
	var result struct {
		Seqno   uint64 `json:"seqno"`
		Utime   uint64 `json:"utime"`
		Aborted bool   `json:"aborted"`
	}
	err := tokens.RPCPost(&result, b.gatewayConfig, "ton_getTransaction", txID)
	if err != nil {
		return nil, err
	}
	if result.Seqno == 0 {
		return &tokens.TxStatus{}, nil
	}
	latest, err := b.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	status := &tokens.TxStatus{
		BlockHeight: result.Seqno,
		BlockTime:   result.Utime,
		Failed:      result.Aborted,
	}
	if latest >= result.Seqno {
		status.Confirmations = latest - result.Seqno + 1
	}
	return status, nil
}
