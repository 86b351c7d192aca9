// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"bytes"
	"encoding/json"

	"github.com/marketsync/marketd/bus"
	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/event"
	"github.com/marketsync/marketd/store"
)

// cache keys of the singleton projections
const (
	balanceKey   = "balance"
	cartKey      = "cart"
	ordersKey    = "orders"
	favoritesKey = "favorites"
	settingsKey  = "settings"
)

// balance is an authoritative replacement
func applyBalance(update *event.BalanceUpdate) {

	value, err := json.Marshal(update.Balance)
	if nil != err {
		return
	}

	cache.Put(store.Pool.Balance, balanceKey, value)
	totalApplied.Increment()
	bus.Send(bus.TopicBalance, value)
}

// cart is an authoritative replacement
func applyCart(update *event.CartUpdate) {
	cache.Put(store.Pool.Cart, cartKey, update.Cart)
	totalApplied.Increment()
	bus.Send(bus.TopicCart, update.Cart)
}

// favourites are an authoritative replacement
func applyFavorites(update *event.FavoriteUpdate) {
	cache.Put(store.Pool.Favorites, favoritesKey, update.Data)
	totalApplied.Increment()
	bus.Send(bus.TopicFavorite, update.Data)
}

// merge one order into the stored list
//
// an existing order with the same id is replaced in place to keep the
// list order stable; an unknown order is prepended as the newest entry
func applyOrder(update *event.OrderUpdate) {

	orders := []json.RawMessage{}
	if current, _, err := cache.Get(store.Pool.Orders, ordersKey); nil == err {
		if err := json.Unmarshal(current, &orders); nil != err {
			orders = []json.RawMessage{}
		}
	}

	merged := false
	for i, order := range orders {
		id, err := event.OrderID(order)
		if nil == err && id == update.OrderID {
			orders[i] = update.Order
			merged = true
			break
		}
	}
	if !merged {
		orders = append([]json.RawMessage{update.Order}, orders...)
	}

	value, err := json.Marshal(orders)
	if nil != err {
		return
	}

	cache.Put(store.Pool.Orders, ordersKey, value)
	totalApplied.Increment()
	bus.Send(bus.TopicOrder, update.Order)
}

// settings only propagate when the value actually changed
//
// the server rebroadcasts settings on every connect, so an unchanged
// value must not wake every subscriber again
func applySettings(update *event.SettingsUpdate) {

	if current, _, err := cache.Get(store.Pool.Settings, settingsKey); nil == err {
		if jsonEqual(current, update.Settings) {
			settingsSkipped.Increment()
			return
		}
	}

	cache.Put(store.Pool.Settings, settingsKey, update.Settings)
	totalApplied.Increment()
	bus.Send(bus.TopicSettings, update.Settings)
}

// compare two JSON documents ignoring insignificant whitespace
func jsonEqual(a, b json.RawMessage) bool {
	compactA := &bytes.Buffer{}
	compactB := &bytes.Buffer{}
	if nil != json.Compact(compactA, a) || nil != json.Compact(compactB, b) {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(compactA.Bytes(), compactB.Bytes())
}
