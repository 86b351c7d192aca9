// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bus

import (
	"sync"
)

// topics published by this layer
const (
	TopicBalance  = "balance"
	TopicCart     = "cart"
	TopicOrder    = "order"
	TopicFavorite = "favorite"
	TopicSettings = "settings"
	TopicSession  = "session"
)

// Message - a single change notification
type Message struct {
	Topic string
	Data  []byte
}

// Handler - callback for one topic
//
// called synchronously on the delivery goroutine; a handler must not
// block
type Handler func(Message)

type entry struct {
	id uint64
	fn Handler
}

var globalData struct {
	sync.Mutex
	topics map[string][]entry
	lastID uint64
}

func init() {
	globalData.topics = make(map[string][]entry)
}

// Subscribe - register a handler for a topic
//
// handlers for the same topic are dispatched in subscription order;
// the returned id is the argument for Unsubscribe
func Subscribe(topic string, fn Handler) uint64 {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.lastID += 1
	globalData.topics[topic] = append(globalData.topics[topic], entry{
		id: globalData.lastID,
		fn: fn,
	})
	return globalData.lastID
}

// Unsubscribe - remove a previously registered handler
func Unsubscribe(topic string, id uint64) {
	globalData.Lock()
	defer globalData.Unlock()

	list := globalData.topics[topic]
	for i, e := range list {
		if e.id == id {
			globalData.topics[topic] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Send - publish data to all handlers of a topic
//
// delivery is synchronous and in subscription order
func Send(topic string, data []byte) {
	globalData.Lock()
	list := make([]entry, len(globalData.topics[topic]))
	copy(list, globalData.topics[topic])
	globalData.Unlock()

	m := Message{
		Topic: topic,
		Data:  data,
	}
	for _, e := range list {
		e.fn(m)
	}
}

// drop every subscription
func reset() {
	globalData.Lock()
	globalData.topics = make(map[string][]entry)
	globalData.Unlock()
}
