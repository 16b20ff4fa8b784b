package tokens

import (
	"fmt"
	"sync"
)

var (
	tokenPairsConfig map[string]*TokenPairConfig
	tokenPairsLock   sync.RWMutex
)

// SetTokenPairsConfig set token pairs config
func SetTokenPairsConfig(pairsConfig []*TokenPairConfig) error {
	pairsMap := make(map[string]*TokenPairConfig, len(pairsConfig))
	for _, pairCfg := range pairsConfig {
		if err := pairCfg.CheckConfig(); err != nil {
			return fmt.Errorf("check token pair config failed: %w", err)
		}
		if _, exist := pairsMap[pairCfg.PairID]; exist {
			return fmt.Errorf("duplicate token pair '%v'", pairCfg.PairID)
		}
		pairsMap[pairCfg.PairID] = pairCfg
	}
	tokenPairsLock.Lock()
	defer tokenPairsLock.Unlock()
	tokenPairsConfig = pairsMap
	return nil
}

// GetTokenPairConfig get token pair config
func GetTokenPairConfig(pairID string) *TokenPairConfig {
	tokenPairsLock.RLock()
	defer tokenPairsLock.RUnlock()
	return tokenPairsConfig[pairID]
}

// GetTokenConfig get token config of pair on given chain
func GetTokenConfig(pairID, blockchain string) *TokenConfig {
	pairCfg := GetTokenPairConfig(pairID)
	if pairCfg == nil {
		return nil
	}
	return pairCfg.TokenOnChain(blockchain)
}

// GetAllPairIDs get all pair ids
func GetAllPairIDs() []string {
	tokenPairsLock.RLock()
	defer tokenPairsLock.RUnlock()
	pairIDs := make([]string, 0, len(tokenPairsConfig))
	for pairID := range tokenPairsConfig {
		pairIDs = append(pairIDs, pairID)
	}
	return pairIDs
}
