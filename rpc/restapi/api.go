// Package restapi provides the rest http handlers.
package restapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tonswap/TON-EVM-Bridge/internal/swapapi"
	"github.com/tonswap/TON-EVM-Bridge/params"
)

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		jsonData, _ := json.Marshal(map[string]string{"error": err.Error()})
		_, _ = w.Write(jsonData)
		return
	}
	w.WriteHeader(http.StatusOK)
	jsonData, _ := json.Marshal(resp)
	_, _ = w.Write(jsonData)
}

// VersionInfoHandler handler
func VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, map[string]string{"version": params.VersionWithMeta}, nil)
}

// ServerInfoHandler handler
func ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, swapapi.GetServerInfo(), nil)
}

// CreateSwapHandler handler
func CreateSwapHandler(w http.ResponseWriter, r *http.Request) {
	var args swapapi.CreateSwapArgs
	err := json.NewDecoder(r.Body).Decode(&args)
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	args.Requester = requesterIP(r)
	res, err := swapapi.CreateSwap(&args)
	writeResponse(w, res, err)
}

// CancelSwapHandler handler
func CancelSwapHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.CancelSwap(vars["swapid"])
	writeResponse(w, res, err)
}

// GetSwapHandler handler
func GetSwapHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.GetSwap(vars["swapid"])
	writeResponse(w, res, err)
}

// SearchSwapsHandler handler
func SearchSwapsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := swapapi.SearchSwapsByShortID(vars["shortid"])
	writeResponse(w, res, err)
}

func requesterIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
