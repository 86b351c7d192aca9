// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// handlers for one topic must run in subscription order
func TestDispatchOrder(t *testing.T) {
	defer reset()

	received := []string{}

	Subscribe(TopicCart, func(m Message) {
		received = append(received, "first:"+string(m.Data))
	})
	Subscribe(TopicCart, func(m Message) {
		received = append(received, "second:"+string(m.Data))
	})

	Send(TopicCart, []byte("a"))
	Send(TopicCart, []byte("b"))

	expected := []string{"first:a", "second:a", "first:b", "second:b"}
	assert.Equal(t, expected, received, "wrong dispatch order")
}

// messages must only reach their own topic
func TestTopicIsolation(t *testing.T) {
	defer reset()

	balance := 0
	cart := 0

	Subscribe(TopicBalance, func(m Message) { balance += 1 })
	Subscribe(TopicCart, func(m Message) { cart += 1 })

	Send(TopicBalance, nil)
	Send(TopicBalance, nil)
	Send(TopicCart, nil)

	assert.Equal(t, 2, balance, "wrong balance notification count")
	assert.Equal(t, 1, cart, "wrong cart notification count")
}

// an unsubscribed handler must not be called again
func TestUnsubscribe(t *testing.T) {
	defer reset()

	calls := 0
	id := Subscribe(TopicOrder, func(m Message) { calls += 1 })

	Send(TopicOrder, nil)
	Unsubscribe(TopicOrder, id)
	Send(TopicOrder, nil)

	assert.Equal(t, 1, calls, "handler called after unsubscribe")

	// removing twice is a no-op
	Unsubscribe(TopicOrder, id)
}

// sending on a topic with no subscribers must be harmless
func TestNoSubscribers(t *testing.T) {
	Send(TopicSettings, []byte("{}"))
}
