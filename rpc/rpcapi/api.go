// Package rpcapi provides the json-rpc methods mirroring the rest api.
package rpcapi

import (
	"net/http"

	"github.com/tonswap/TON-EVM-Bridge/internal/swapapi"
	"github.com/tonswap/TON-EVM-Bridge/params"
)

// RPCAPI rpc api handler
type RPCAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// GetVersionInfo api
func (s *RPCAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	*result = params.VersionWithMeta
	return nil
}

// GetServerInfo api
func (s *RPCAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *swapapi.ServerInfo) error {
	res := swapapi.GetServerInfo()
	if res != nil {
		*result = *res
	}
	return nil
}

// CreateSwap api
func (s *RPCAPI) CreateSwap(r *http.Request, args *swapapi.CreateSwapArgs, result *swapapi.SwapView) error {
	args.Requester = r.RemoteAddr
	res, err := swapapi.CreateSwap(args)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// CancelSwap api
func (s *RPCAPI) CancelSwap(r *http.Request, swapID *string, result *swapapi.SwapView) error {
	res, err := swapapi.CancelSwap(*swapID)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetSwap api
func (s *RPCAPI) GetSwap(r *http.Request, swapID *string, result *swapapi.SwapView) error {
	res, err := swapapi.GetSwap(*swapID)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// SearchSwaps api
func (s *RPCAPI) SearchSwaps(r *http.Request, shortID *string, result *[]*swapapi.SwapView) error {
	res, err := swapapi.SearchSwapsByShortID(*shortID)
	if err == nil {
		*result = res
	}
	return err
}
