// Package riskctrl audits the tracked hot wallet reserves and alerts
// when a pool drops below its configured floor.
package riskctrl

import (
	"fmt"
	"math/big"
	"time"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
	"github.com/tonswap/TON-EVM-Bridge/params"
	"github.com/tonswap/TON-EVM-Bridge/tokens"
)

// overridable in tests
var sumWalletBalances = mongodb.SumWalletBalances

// Work start the reserve audit loop
func Work() {
	riskCfg := params.GetConfig().Risk
	if riskCfg == nil {
		log.Info("no risk config, skip reserve audit")
		return
	}
	interval := riskCfg.CheckIntervalSeconds
	if interval <= 0 {
		interval = 300
	}
	log.Info("start reserve audit work", "intervalSeconds", interval,
		"minReserveEth", riskCfg.MinReserveEth, "minReserveTon", riskCfg.MinReserveTon)
	go func() {
		for {
			auditOnce(riskCfg)
			time.Sleep(time.Duration(interval) * time.Second)
		}
	}()
}

func auditOnce(riskCfg *params.RiskConfig) {
	auditChainReserve(tokens.ChainETH, riskCfg.MinReserveEth)
	auditChainReserve(tokens.ChainTON, riskCfg.MinReserveTon)
}

func auditChainReserve(blockchain string, minReserve float64) {
	if minReserve <= 0 {
		return
	}
	total, err := sumWalletBalances(blockchain, mongodb.WalletTypeTransferer)
	if err != nil {
		log.Warn("[audit] sum pool balances failed", "blockchain", blockchain, "err", err)
		return
	}
	floor := reserveFloor(blockchain, minReserve)
	if total.Cmp(floor) >= 0 {
		log.Trace("[audit] reserve is healthy", "blockchain", blockchain, "total", total)
		return
	}
	log.Error("[audit] pool reserve below floor", "blockchain", blockchain, "total", total, "floor", floor)
	subject := fmt.Sprintf("[%v] %v pool reserve below floor", params.GetIdentifier(), blockchain)
	content := fmt.Sprintf("chain %v\ntotal reserve %v\nconfigured floor %v\ntime %v\n",
		blockchain, total, floor, time.Now().Format(time.RFC3339))
	sendAlertEmail(subject, content)
}

func reserveFloor(blockchain string, minReserve float64) *big.Int {
	decimals := uint8(18)
	for _, pairID := range tokens.GetAllPairIDs() {
		token := tokens.GetTokenConfig(pairID, blockchain)
		if token != nil && token.Decimals != nil {
			decimals = *token.Decimals
			break
		}
	}
	return tokens.ToBits(minReserve, decimals)
}
