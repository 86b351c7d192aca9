// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"sync"

	"github.com/marketsync/marketd/event"
)

// Handler - callback for one kind of inbound event
//
// handlers run on the channel's delivery goroutine in registration
// order; a handler must not block and must not call Disconnect, which
// waits for the running delivery to finish
type Handler func(ev *event.Event)

// held for the duration of one delivery; Disconnect takes it to wait
// out an in-flight delivery before the session teardown continues
var dispatchLock sync.Mutex

type handlerEntry struct {
	id uint64
	fn Handler
}

// registered handlers survive any number of reconnects; they are only
// dropped by Off or Disconnect
var handlerData struct {
	sync.Mutex
	lastID   uint64
	handlers map[event.Kind][]handlerEntry
}

func init() {
	handlerData.handlers = make(map[event.Kind][]handlerEntry)
}

// On - register a handler for one kind of event
//
// registration is valid before the connection is established; the
// returned id is the argument for Off
func On(kind event.Kind, fn Handler) uint64 {
	handlerData.Lock()
	defer handlerData.Unlock()

	handlerData.lastID += 1
	handlerData.handlers[kind] = append(handlerData.handlers[kind], handlerEntry{
		id: handlerData.lastID,
		fn: fn,
	})
	return handlerData.lastID
}

// Off - remove a previously registered handler
func Off(kind event.Kind, id uint64) {
	handlerData.Lock()
	defer handlerData.Unlock()

	list := handlerData.handlers[kind]
	for i, e := range list {
		if e.id == id {
			handlerData.handlers[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// snapshot of the handlers for a kind, in registration order
func handlersFor(kind event.Kind) []Handler {
	handlerData.Lock()
	defer handlerData.Unlock()

	list := handlerData.handlers[kind]
	snapshot := make([]Handler, len(list))
	for i, e := range list {
		snapshot[i] = e.fn
	}
	return snapshot
}

// count of handlers for a kind
func handlerCount(kind event.Kind) int {
	handlerData.Lock()
	defer handlerData.Unlock()
	return len(handlerData.handlers[kind])
}

// HandlersRegistered - total count of registered handlers
func HandlersRegistered() int {
	handlerData.Lock()
	defer handlerData.Unlock()

	n := 0
	for _, list := range handlerData.handlers {
		n += len(list)
	}
	return n
}

// drop every handler; used by Disconnect
func removeAllHandlers() {
	handlerData.Lock()
	defer handlerData.Unlock()
	handlerData.handlers = make(map[event.Kind][]handlerEntry)
}
