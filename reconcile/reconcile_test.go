// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/marketd/bus"
	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/event"
	"github.com/marketsync/marketd/fixtures"
	"github.com/marketsync/marketd/store"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	os.RemoveAll(databaseFileName)
	if err := store.Initialise(databaseFileName); nil != err {
		panic(err)
	}
	if err := cache.Initialise(); nil != err {
		panic(err)
	}

	rc := m.Run()

	cache.Finalise()
	store.Finalise()
	os.RemoveAll(databaseFileName)
	os.Exit(rc)
}

// collect bus messages for one topic during a test
func collect(topic string) (*[][]byte, func()) {
	received := &[][]byte{}
	id := bus.Subscribe(topic, func(m bus.Message) {
		*received = append(*received, m.Data)
	})
	return received, func() { bus.Unsubscribe(topic, id) }
}

func TestApplyBalance(t *testing.T) {
	received, cancel := collect(bus.TopicBalance)
	defer cancel()

	applyBalance(&event.BalanceUpdate{Balance: "1024.50"})

	value, _, err := cache.Get(store.Pool.Balance, balanceKey)
	require.Nil(t, err, "balance not cached")
	assert.Equal(t, `"1024.50"`, string(value), "wrong cached balance")

	require.Equal(t, 1, len(*received), "missing broadcast")
	assert.Equal(t, `"1024.50"`, string((*received)[0]))
}

func TestApplyCart(t *testing.T) {
	received, cancel := collect(bus.TopicCart)
	defer cancel()

	cart := json.RawMessage(`{"items":[{"sku":"m-77","qty":2}]}`)
	applyCart(&event.CartUpdate{Cart: cart})

	value, _, err := cache.Get(store.Pool.Cart, cartKey)
	require.Nil(t, err, "cart not cached")
	assert.JSONEq(t, string(cart), string(value), "wrong cached cart")
	assert.Equal(t, 1, len(*received), "missing broadcast")

	// replacement, not merge
	applyCart(&event.CartUpdate{Cart: json.RawMessage(`{"items":[]}`)})
	value, _, err = cache.Get(store.Pool.Cart, cartKey)
	require.Nil(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(value), "cart was not replaced")
}

func TestApplyOrderMerge(t *testing.T) {
	cache.Delete(store.Pool.Orders, ordersKey)

	applyOrder(&event.OrderUpdate{
		OrderID: "11",
		Order:   json.RawMessage(`{"id":11,"status":"pending"}`),
	})
	applyOrder(&event.OrderUpdate{
		OrderID: "12",
		Order:   json.RawMessage(`{"id":12,"status":"pending"}`),
	})

	// newest order first
	value, _, err := cache.Get(store.Pool.Orders, ordersKey)
	require.Nil(t, err, "orders not cached")
	assert.JSONEq(t,
		`[{"id":12,"status":"pending"},{"id":11,"status":"pending"}]`,
		string(value), "wrong order list")

	// a known id updates in place and keeps its position
	applyOrder(&event.OrderUpdate{
		OrderID: "11",
		Order:   json.RawMessage(`{"id":11,"status":"shipped"}`),
	})
	value, _, err = cache.Get(store.Pool.Orders, ordersKey)
	require.Nil(t, err)
	assert.JSONEq(t,
		`[{"id":12,"status":"pending"},{"id":11,"status":"shipped"}]`,
		string(value), "order was not merged in place")

	// applying the same event again changes nothing
	applyOrder(&event.OrderUpdate{
		OrderID: "11",
		Order:   json.RawMessage(`{"id":11,"status":"shipped"}`),
	})
	again, _, err := cache.Get(store.Pool.Orders, ordersKey)
	require.Nil(t, err)
	assert.JSONEq(t, string(value), string(again), "replay was not idempotent")
}

func TestApplySettingsOnlyIfChanged(t *testing.T) {
	received, cancel := collect(bus.TopicSettings)
	defer cancel()

	cache.Delete(store.Pool.Settings, settingsKey)

	applySettings(&event.SettingsUpdate{Settings: json.RawMessage(`{"maintenance":false}`)})
	assert.Equal(t, 1, len(*received), "first settings not broadcast")

	// unchanged value, modulo whitespace: no write, no broadcast
	skippedBefore := SettingsSkipped()
	applySettings(&event.SettingsUpdate{Settings: json.RawMessage(`{ "maintenance" : false }`)})
	assert.Equal(t, 1, len(*received), "unchanged settings were rebroadcast")
	assert.Equal(t, skippedBefore+1, SettingsSkipped(), "skip was not counted")

	applySettings(&event.SettingsUpdate{Settings: json.RawMessage(`{"maintenance":true}`)})
	assert.Equal(t, 2, len(*received), "changed settings not broadcast")

	value, _, err := cache.Get(store.Pool.Settings, settingsKey)
	require.Nil(t, err)
	assert.JSONEq(t, `{"maintenance":true}`, string(value))
}

func TestApplyFavorites(t *testing.T) {
	received, cancel := collect(bus.TopicFavorite)
	defer cancel()

	data := json.RawMessage(`{"listings":["m-1","m-9"]}`)
	applyFavorites(&event.FavoriteUpdate{Data: data})

	value, _, err := cache.Get(store.Pool.Favorites, favoritesKey)
	require.Nil(t, err, "favourites not cached")
	assert.JSONEq(t, string(data), string(value))
	assert.Equal(t, 1, len(*received), "missing broadcast")
}
