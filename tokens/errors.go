package tokens

import (
	"errors"
)

// common errors
var (
	ErrUnsupportedChain     = errors.New("blockchain not supported")
	ErrNoBridgeForChain     = errors.New("no bridge exist for blockchain")
	ErrRPCQueryError        = errors.New("rpc query error")
	ErrMintNotSupported     = errors.New("mint not supported on this chain")
	ErrTxNotFound           = errors.New("tx not found")
	ErrBlockNotFound        = errors.New("block not found")
	ErrDepositNotFound      = errors.New("deposit not found")
	ErrWrongSwapValue       = errors.New("wrong swap value")
	ErrSwapNotRecalculated  = errors.New("swap value not recalculated")
	ErrTokenPairNotFound    = errors.New("token pair not found")
	ErrNoAvailableWallet    = errors.New("no available wallet")
	ErrTooManyPendingSwaps  = errors.New("too many pending swaps of this requester")
	ErrSwapNotFound         = errors.New("swap not found")
	ErrSwapAlreadyCompleted = errors.New("swap is already completed")
	ErrSwapInProcessing     = errors.New("swap is in processing")
)

// stable swap status codes, persisted with every terminal transition.
// values are fixed, never renumber.
const (
	CodeNone                  = 0
	CodeDepositNotFound       = 3001
	CodeSwapNotRecalculated   = 3002
	CodeDestinationSendFailed = 3003
	CodeExpiredBeforeTransfer = 3004
	CodeEnqueueFailed         = 3005
	CodeCanceledByUser        = 3006
	CodeInternalError         = 3007
)

// IsRPCQueryOrNotFoundError is rpc or not found error
func IsRPCQueryOrNotFoundError(err error) bool {
	return errors.Is(err, ErrRPCQueryError) || errors.Is(err, ErrTxNotFound)
}
