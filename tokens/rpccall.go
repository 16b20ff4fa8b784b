package tokens

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	restyClient = resty.New().SetTimeout(60 * time.Second)

	rpcRequestID uint64
)

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonrpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

// RPCPost call a JSON-RPC 2.0 method, trying each gateway address in turn
func RPCPost(result interface{}, gateway *GatewayConfig, method string, params ...interface{}) (err error) {
	if params == nil {
		params = []interface{}{}
	}
	req := &jsonrpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&rpcRequestID, 1),
		Method:  method,
		Params:  params,
	}
	for _, apiAddress := range gateway.APIAddress {
		err = rpcPostTo(result, apiAddress, req)
		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v %v", ErrRPCQueryError, method, err)
}

func rpcPostTo(result interface{}, url string, req *jsonrpcRequest) error {
	var rpcResp jsonrpcResponse
	resp, err := restyClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&rpcResp).
		Post(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("wrong http status %v", resp.StatusCode())
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %v: %v", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if result == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return ErrTxNotFound
	}
	return json.Unmarshal(rpcResp.Result, result)
}
