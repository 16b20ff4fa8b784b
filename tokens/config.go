package tokens

import (
	"errors"
	"math/big"
	"strings"
)

// supported blockchains
const (
	ChainETH = "ETH"
	ChainTON = "TON"
)

// ChainConfig chain config
type ChainConfig struct {
	Blockchain     string
	NetID          string
	Confirmations  *uint64
	InitialHeight  uint64
	IssueByMint    bool // true if destination asset is minted instead of paid from a pool
	BlockTime      uint64
	CacheTTLSecond uint64
}

// GatewayConfig gateway config
type GatewayConfig struct {
	APIAddress []string
}

// TokenConfig token config
type TokenConfig struct {
	Blockchain      string
	Symbol          string
	Decimals        *uint8
	ContractAddress string   // erc20 contract or jetton master, empty for native coin
	MaximumSwap     *float64 // whole unit
	MinimumSwap     *float64 // whole unit
	SwapFeeRate     *float64
	MinimumSwapFee  *float64 `toml:",omitempty" json:",omitempty"` // whole unit
	MaximumSwapFee  *float64 `toml:",omitempty" json:",omitempty"` // whole unit

	// calced value
	maxSwap    *big.Int
	minSwap    *big.Int
	minSwapFee *big.Int
	maxSwapFee *big.Int
}

// TokenPairConfig pair of bridged tokens, one per chain
type TokenPairConfig struct {
	PairID   string
	EthToken *TokenConfig
	TonToken *TokenConfig
}

// IsSupportedChain is supported chain
func IsSupportedChain(blockchain string) bool {
	switch strings.ToUpper(blockchain) {
	case ChainETH, ChainTON:
		return true
	default:
		return false
	}
}

// OppositeChain get the other endpoint of the bridged pair
func OppositeChain(blockchain string) string {
	if strings.EqualFold(blockchain, ChainETH) {
		return ChainTON
	}
	return ChainETH
}

// CheckConfig check chain config
func (c *ChainConfig) CheckConfig() error {
	if !IsSupportedChain(c.Blockchain) {
		return errors.New("chain config with unsupported 'Blockchain' " + c.Blockchain)
	}
	if c.Confirmations == nil {
		return errors.New("chain must config 'Confirmations'")
	}
	if c.CacheTTLSecond == 0 {
		c.CacheTTLSecond = 5
	}
	return nil
}

// CheckConfig check token config and cache the scaled swap bounds
func (c *TokenConfig) CheckConfig() error {
	if !IsSupportedChain(c.Blockchain) {
		return errors.New("token config with unsupported 'Blockchain' " + c.Blockchain)
	}
	if c.Symbol == "" {
		return errors.New("token must config 'Symbol'")
	}
	if c.Decimals == nil {
		return errors.New("token must config 'Decimals'")
	}
	if c.MaximumSwap == nil || *c.MaximumSwap <= 0 {
		return errors.New("token must config positive 'MaximumSwap'")
	}
	if c.MinimumSwap == nil || *c.MinimumSwap <= 0 {
		return errors.New("token must config positive 'MinimumSwap'")
	}
	if *c.MinimumSwap > *c.MaximumSwap {
		return errors.New("token config wrong swap range")
	}
	if c.SwapFeeRate == nil || *c.SwapFeeRate < 0 || *c.SwapFeeRate >= 1 {
		return errors.New("token must config 'SwapFeeRate' in [0,1)")
	}
	c.CalcAndStoreValue()
	return nil
}

// CalcAndStoreValue calc and store scaled values of whole-unit bounds
func (c *TokenConfig) CalcAndStoreValue() {
	c.maxSwap = ToBits(*c.MaximumSwap, *c.Decimals)
	c.minSwap = ToBits(*c.MinimumSwap, *c.Decimals)
	c.minSwapFee = big.NewInt(0)
	c.maxSwapFee = big.NewInt(0)
	if c.MinimumSwapFee != nil {
		c.minSwapFee = ToBits(*c.MinimumSwapFee, *c.Decimals)
	}
	if c.MaximumSwapFee != nil {
		c.maxSwapFee = ToBits(*c.MaximumSwapFee, *c.Decimals)
	}
}

// CheckConfig check pair config
func (c *TokenPairConfig) CheckConfig() error {
	if c.PairID == "" {
		return errors.New("token pair must config 'PairID'")
	}
	if c.EthToken == nil || c.TonToken == nil {
		return errors.New("token pair must config both 'EthToken' and 'TonToken'")
	}
	c.EthToken.Blockchain = ChainETH
	c.TonToken.Blockchain = ChainTON
	if err := c.EthToken.CheckConfig(); err != nil {
		return err
	}
	return c.TonToken.CheckConfig()
}

// TokenOnChain get the pair's token config on the specified chain
func (c *TokenPairConfig) TokenOnChain(blockchain string) *TokenConfig {
	if strings.EqualFold(blockchain, ChainETH) {
		return c.EthToken
	}
	if strings.EqualFold(blockchain, ChainTON) {
		return c.TonToken
	}
	return nil
}
