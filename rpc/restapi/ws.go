package restapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tonswap/TON-EVM-Bridge/internal/swapapi"
	"github.com/tonswap/TON-EVM-Bridge/log"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SwapEventsHandler stream swap lifecycle events over a websocket.
// An optional 'swapid' query parameter narrows the stream to one swap.
func SwapEventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade websocket failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	swapID := r.URL.Query().Get("swapid")
	events, unsubscribe := swapapi.SubscribeSwapEvents(swapID)
	defer unsubscribe()
	defer func() {
		_ = conn.Close()
	}()

	// drain the reader so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, errRead := conn.ReadMessage(); errRead != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if errWrite := conn.WriteJSON(event); errWrite != nil {
				log.Trace("write swap event failed", "err", errWrite, "remote", r.RemoteAddr)
				return
			}
		case <-done:
			return
		}
	}
}
