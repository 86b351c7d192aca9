// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/marketd/event"
	"github.com/marketsync/marketd/fault"
)

func TestKindNames(t *testing.T) {
	for _, k := range event.Kinds() {
		back, err := event.KindFromName(k.String())
		require.Nil(t, err, "name round trip error for %s", k)
		assert.Equal(t, k, back, "name round trip mismatch")
	}

	_, err := event.KindFromName("order:created")
	assert.Equal(t, fault.ErrUnknownEventName, err, "unknown name was accepted")
}

func TestDecodeBalance(t *testing.T) {
	ev, err := event.Decode("balance:updated", []byte(`{"balance":"42.00"}`))
	require.Nil(t, err, "decode error")
	assert.Equal(t, event.BalanceUpdated, ev.Kind, "wrong kind")

	payload := ev.Payload.(*event.BalanceUpdate)
	assert.Equal(t, "42.00", payload.Balance, "wrong balance")

	// a zero balance is still a present field
	ev, err = event.Decode("balance:updated", []byte(`{"balance":""}`))
	require.Nil(t, err, "decode error for empty balance")
	assert.Equal(t, "", ev.Payload.(*event.BalanceUpdate).Balance)
}

func TestDecodeOrder(t *testing.T) {
	ev, err := event.Decode("order:updated", []byte(`{"order":{"id":"ord-7","status":"paid"}}`))
	require.Nil(t, err, "decode error")

	payload := ev.Payload.(*event.OrderUpdate)
	assert.Equal(t, "ord-7", payload.OrderID, "wrong order id")
	assert.JSONEq(t, `{"id":"ord-7","status":"paid"}`, string(payload.Order), "wrong order body")

	// numeric ids arrive from older backends
	ev, err = event.Decode("order:updated", []byte(`{"order":{"id":1207,"status":"shipped"}}`))
	require.Nil(t, err, "decode error for numeric id")
	assert.Equal(t, "1207", ev.Payload.(*event.OrderUpdate).OrderID, "wrong numeric order id")
}

func TestDecodeSettings(t *testing.T) {
	ev, err := event.Decode("system:settings-updated", []byte(`{"settings":{"maintenance":false}}`))
	require.Nil(t, err, "decode error")
	assert.JSONEq(t, `{"maintenance":false}`, string(ev.Payload.(*event.SettingsUpdate).Settings))
}

func TestDecodeMalformed(t *testing.T) {

	testData := []struct {
		name string
		data string
	}{
		{"balance:updated", `{}`},                        // missing field
		{"balance:updated", `{"balance":42}`},            // wrong type
		{"balance:updated", `{"balance"`},                // truncated
		{"cart:updated", `{"basket":{}}`},                // wrong field
		{"order:updated", `{"order":{"status":"paid"}}`}, // no id
		{"order:updated", `{"order":{"id":""}}`},         // empty id
		{"order:updated", `{"order":{"id":true}}`},       // bad id type
		{"favorite:updated", `{}`},
		{"system:settings-updated", `[]`},
	}

	for i, d := range testData {
		ev, err := event.Decode(d.name, []byte(d.data))
		assert.Nil(t, ev, "%d: malformed payload produced an event", i)
		assert.Equal(t, fault.ErrMalformedEventPayload, err, "%d: wrong error", i)
	}
}
