package swapapi

import (
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
)

func convertMgoSwapToSwapView(swap *mongodb.MgoSwap) *SwapView {
	view := &SwapView{
		SwapID:             swap.SwapID,
		ShortID:            swap.ShortID,
		PairID:             swap.PairID,
		SourceChain:        swap.SrcChain,
		DestinationChain:   swap.DestChain,
		SourceAddress:      swap.SourceAddress,
		SourceAmount:       swap.SourceAmount,
		SourceTxID:         swap.SourceTxID,
		DestinationAddress: swap.DestAddress,
		DestinationAmount:  swap.DestAmount,
		DestinationTxID:    swap.DestTxID,
		Fee:                swap.Fee,
		Status:             uint16(swap.Status),
		StatusMsg:          swap.Status.String(),
		StatusCode:         swap.StatusCode,
		Confirmations:      swap.Confirmations,
		Memo:               swap.Memo,
		OrderedAt:          swap.OrderedAt,
		ExpiresAt:          swap.ExpiresAt,
		UpdatedAt:          swap.UpdatedAt,
	}
	// deposit address only matters while the swap still awaits it
	if swap.Status == mongodb.SwapPending && swap.SourceWallet != "" {
		if wallet, err := walletStore.FindWallet(swap.SourceWallet); err == nil {
			view.DepositAddress = wallet.Address
			view.DepositConjAddress = wallet.ConjAddress
		}
	}
	return view
}

func convertMgoSwapsToSwapViews(swaps []*mongodb.MgoSwap) []*SwapView {
	views := make([]*SwapView, len(swaps))
	for i, swap := range swaps {
		views[i] = convertMgoSwapToSwapView(swap)
	}
	return views
}
