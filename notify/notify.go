// Package notify fans out swap lifecycle events to interested
// subscribers, eg. the websocket API.
package notify

import (
	"sync"

	"github.com/tonswap/TON-EVM-Bridge/log"
	"github.com/tonswap/TON-EVM-Bridge/mongodb"
)

const subscriberBufferSize = 16

// Event a swap lifecycle change
type Event struct {
	SwapID             string             `json:"swapid"`
	Status             mongodb.SwapStatus `json:"status"`
	StatusMsg          string             `json:"statusmsg"`
	StatusCode         int                `json:"statuscode"`
	Confirmations      uint64             `json:"confirmations"`
	TotalConfirmations uint64             `json:"totalConfirmations"`
}

type subscriber struct {
	swapID string // empty subscribes to all swaps
	ch     chan Event
}

// Notifier publish/subscribe hub for swap events.
// Publish never blocks, slow subscribers drop events.
type Notifier struct {
	mu   sync.RWMutex
	subs map[uint64]*subscriber
	next uint64
}

// NewNotifier new event hub
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]*subscriber)}
}

// Subscribe register interest in one swap, or all swaps when swapID is
// empty. The returned func unsubscribes and closes the channel.
func (n *Notifier) Subscribe(swapID string) (<-chan Event, func()) {
	sub := &subscriber{swapID: swapID, ch: make(chan Event, subscriberBufferSize)}
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = sub
	n.mu.Unlock()
	unsubscribe := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, exist := n.subs[id]; exist {
			delete(n.subs, id)
			close(sub.ch)
		}
	}
	return sub.ch, unsubscribe
}

// Publish deliver an event to matching subscribers
func (n *Notifier) Publish(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.subs {
		if sub.swapID != "" && sub.swapID != event.SwapID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Trace("drop swap event for slow subscriber", "swapID", event.SwapID, "status", event.Status)
		}
	}
}
