// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cache

import (
	"encoding/json"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/store"
)

const (
	// an optimistic value only exists to render instantly before the
	// authoritative echo arrives; expire it rather than let a lost
	// echo pin stale data forever
	tentativeExpiry = 30 * time.Second
	cleanupInterval = time.Minute
)

// Entry - one cached projection with its last update time
type Entry struct {
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var globalData struct {
	sync.RWMutex
	overlay *gocache.Cache

	// set once during initialise
	initialised bool
}

// Initialise - set up the tentative overlay
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.overlay = gocache.New(tentativeExpiry, cleanupInterval)
	globalData.initialised = true
	return nil
}

// Finalise - drop the overlay
func Finalise() {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.overlay = nil
	globalData.initialised = false
}

// Put - authoritative write
//
// persists the entry and removes any tentative value for the same key
func Put(pool *store.PoolHandle, key string, value []byte) {
	entry := Entry{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if nil != err {
		// Entry marshal cannot fail for valid JSON values
		return
	}
	pool.Put(key, data)

	globalData.RLock()
	if nil != globalData.overlay {
		globalData.overlay.Delete(overlayKey(pool, key))
	}
	globalData.RUnlock()
}

// PutTentative - optimistic local write
//
// only visible through Get until the authoritative echo arrives or the
// TTL expires
func PutTentative(pool *store.PoolHandle, key string, value []byte) {
	globalData.RLock()
	defer globalData.RUnlock()
	if nil == globalData.overlay {
		return
	}

	globalData.overlay.Set(overlayKey(pool, key), Entry{
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}, gocache.DefaultExpiration)
}

// Get - merged read, tentative over authoritative
func Get(pool *store.PoolHandle, key string) (json.RawMessage, time.Time, error) {
	globalData.RLock()
	if nil != globalData.overlay {
		if x, ok := globalData.overlay.Get(overlayKey(pool, key)); ok {
			entry := x.(Entry)
			globalData.RUnlock()
			return entry.Value, entry.UpdatedAt, nil
		}
	}
	globalData.RUnlock()

	data := pool.Get(key)
	if nil == data {
		return nil, time.Time{}, fault.ErrCacheKeyNotFound
	}

	entry := Entry{}
	if err := json.Unmarshal(data, &entry); nil != err {
		return nil, time.Time{}, fault.ErrCacheKeyNotFound
	}
	return entry.Value, entry.UpdatedAt, nil
}

// Delete - remove one key from both tiers
func Delete(pool *store.PoolHandle, key string) {
	globalData.RLock()
	if nil != globalData.overlay {
		globalData.overlay.Delete(overlayKey(pool, key))
	}
	globalData.RUnlock()

	pool.Delete(key)
}

// PurgeSession - wipe every session scoped pool and the whole overlay
//
// no session scoped entry may survive this call
func PurgeSession() {
	for _, pool := range store.SessionPools() {
		pool.DeleteAll()
	}

	globalData.RLock()
	if nil != globalData.overlay {
		globalData.overlay.Flush()
	}
	globalData.RUnlock()
}

func overlayKey(pool *store.PoolHandle, key string) string {
	return pool.KeyPrefix() + key
}
