// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/marketsync/marketd/channel"
	"github.com/marketsync/marketd/counter"
	"github.com/marketsync/marketd/event"
	"github.com/marketsync/marketd/fault"
)

// globals for this module
type reconcileData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	// set once during initialise
	initialised bool
}

// global data
var globalData reconcileData

// apply counters
var (
	totalApplied    counter.Counter
	settingsSkipped counter.Counter
)

// Initialise - setup the reconciler
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("reconcile")
	globalData.log.Info("starting…")

	totalApplied = 0
	settingsSkipped = 0

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - shut down the reconciler
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.initialised = false

	return nil
}

// RegisterHandlers - attach one apply rule per event kind
//
// called on every login since a channel disconnect drops all handlers
func RegisterHandlers() {

	channel.On(event.BalanceUpdated, func(ev *event.Event) {
		applyBalance(ev.Payload.(*event.BalanceUpdate))
	})

	channel.On(event.CartUpdated, func(ev *event.Event) {
		applyCart(ev.Payload.(*event.CartUpdate))
	})

	channel.On(event.OrderUpdated, func(ev *event.Event) {
		applyOrder(ev.Payload.(*event.OrderUpdate))
	})

	channel.On(event.FavoriteUpdated, func(ev *event.Event) {
		applyFavorites(ev.Payload.(*event.FavoriteUpdate))
	})

	channel.On(event.SettingsUpdated, func(ev *event.Event) {
		applySettings(ev.Payload.(*event.SettingsUpdate))
	})
}

// TotalApplied - count of events applied to the cache
func TotalApplied() uint64 {
	return totalApplied.Uint64()
}

// SettingsSkipped - count of unchanged settings events dropped
func SettingsSkipped() uint64 {
	return settingsSkipped.Uint64()
}
