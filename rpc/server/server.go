// Package server provides the http server composing the rest, json-rpc
// and websocket surfaces.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/params"
	"github.com/tonswap/TON-EVM-Bridge/rpc/restapi"
	"github.com/tonswap/TON-EVM-Bridge/rpc/rpcapi"
)

// StartAPIServer start api server
func StartAPIServer() {
	apiServer := params.GetServerConfig().APIServer
	router := initRouter(apiServer)

	allowedOrigins := apiServer.AllowedOrigins
	corsOptions := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST"}),
	}
	if len(allowedOrigins) != 0 {
		corsOptions = append(corsOptions,
			handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
			handlers.AllowedOrigins(allowedOrigins),
		)
	}

	log.Info("api service listen and serving", "port", apiServer.Port, "allowedOrigins", allowedOrigins)
	svr := http.Server{
		Addr:         fmt.Sprintf(":%v", apiServer.Port),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      handlers.CORS(corsOptions...)(router),
	}
	go func() {
		if err := svr.ListenAndServe(); err != nil {
			log.Error("ListenAndServe error", "err", err)
		}
	}()
}

func initRouter(apiServer *params.APIServerConfig) *mux.Router {
	r := mux.NewRouter()

	rpcserver := rpc.NewServer()
	rpcserver.RegisterCodec(rpcjson.NewCodec(), "application/json")
	_ = rpcserver.RegisterService(new(rpcapi.RPCAPI), "swap")

	r.Handle("/rpc", limitedHandler(apiServer, rpcserver))
	r.HandleFunc("/serverinfo", restapi.ServerInfoHandler).Methods("GET")
	r.HandleFunc("/versioninfo", restapi.VersionInfoHandler).Methods("GET")
	r.Handle("/swap/create", limitedHandler(apiServer, http.HandlerFunc(restapi.CreateSwapHandler))).Methods("POST")
	r.Handle("/swap/cancel/{swapid}", limitedHandler(apiServer, http.HandlerFunc(restapi.CancelSwapHandler))).Methods("POST")
	r.HandleFunc("/swap/{swapid}", restapi.GetSwapHandler).Methods("GET")
	r.HandleFunc("/swap/search/{shortid}", restapi.SearchSwapsHandler).Methods("GET")
	r.HandleFunc("/swap/events", restapi.SwapEventsHandler).Methods("GET")

	return r
}

func limitedHandler(apiServer *params.APIServerConfig, next http.Handler) http.Handler {
	maxRate := apiServer.MaxRequestsPerSecond
	if maxRate <= 0 {
		return next
	}
	lmt := tollbooth.NewLimiter(maxRate, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})
	return tollbooth.LimitHandler(lmt, next)
}
