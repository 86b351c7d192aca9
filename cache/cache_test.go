// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cache_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/fixtures"
	"github.com/marketsync/marketd/store"
)

const (
	databaseFileName = "test-cache.leveldb"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()
	m.Run()
}

func setup(t *testing.T) {
	os.RemoveAll(databaseFileName)
	err := store.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("store initialise error: %s", err)
	}
	err = cache.Initialise()
	if nil != err {
		t.Fatalf("cache initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	cache.Finalise()
	store.Finalise()
	os.RemoveAll(databaseFileName)
}

func TestAuthoritativeReadBack(t *testing.T) {
	setup(t)
	defer teardown(t)

	cache.Put(store.Pool.Balance, "balance", []byte(`"100"`))

	value, updatedAt, err := cache.Get(store.Pool.Balance, "balance")
	require.Nil(t, err, "get error")
	assert.Equal(t, `"100"`, string(value), "wrong balance")
	assert.False(t, updatedAt.IsZero(), "missing update time")

	_, _, err = cache.Get(store.Pool.Cart, "cart")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "missing key did not report not-found")
}

// a tentative value renders immediately but the authoritative echo
// must win once it arrives
func TestTentativeSuperseded(t *testing.T) {
	setup(t)
	defer teardown(t)

	cache.Put(store.Pool.Cart, "cart", []byte(`{"items":[]}`))
	cache.PutTentative(store.Pool.Cart, "cart", []byte(`{"items":["optimistic"]}`))

	value, _, err := cache.Get(store.Pool.Cart, "cart")
	require.Nil(t, err, "get error")
	assert.JSONEq(t, `{"items":["optimistic"]}`, string(value), "tentative value not visible")

	// the confirmed cart arrives over the channel
	cache.Put(store.Pool.Cart, "cart", []byte(`{"items":["confirmed"]}`))

	value, _, err = cache.Get(store.Pool.Cart, "cart")
	require.Nil(t, err, "get error")
	assert.JSONEq(t, `{"items":["confirmed"]}`, string(value), "authoritative value did not win")
}

// a tentative value with no authoritative backing disappears with the
// overlay purge
func TestPurgeSession(t *testing.T) {
	setup(t)
	defer teardown(t)

	cache.Put(store.Pool.Balance, "balance", []byte(`"100"`))
	cache.Put(store.Pool.Settings, "settings", []byte(`{"maintenance":true}`))
	cache.PutTentative(store.Pool.Favorites, "favorites", []byte(`{"goods":[1]}`))

	cache.PurgeSession()

	_, _, err := cache.Get(store.Pool.Balance, "balance")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "balance survived purge")

	_, _, err = cache.Get(store.Pool.Favorites, "favorites")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "tentative favourites survived purge")

	// device scope survives
	value, _, err := cache.Get(store.Pool.Settings, "settings")
	require.Nil(t, err, "settings lost by purge")
	assert.JSONEq(t, `{"maintenance":true}`, string(value), "settings damaged by purge")
}

func TestDelete(t *testing.T) {
	setup(t)
	defer teardown(t)

	cache.Put(store.Pool.Orders, "orders", []byte(`[]`))
	cache.PutTentative(store.Pool.Orders, "orders", []byte(`[{"id":"x"}]`))

	cache.Delete(store.Pool.Orders, "orders")

	_, _, err := cache.Get(store.Pool.Orders, "orders")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "delete left data behind")
}
