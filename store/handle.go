// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - handle of a pool
type PoolHandle struct {
	prefix byte
	limit  []byte
}

// Element - a single key/value pair
type Element struct {
	Key   string
	Value []byte
}

// KeyPrefix - the pool's one byte namespace as a string
//
// used by the cache overlay to build unambiguous composite keys
func (p *PoolHandle) KeyPrefix() string {
	return string(p.prefix)
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key string) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value pair in the pool
func (p *PoolHandle) Put(key string, value []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.Put nil database")
		return
	}
	err := poolData.db.Put(p.prefixKey(key), value, nil)
	logger.PanicIfError("pool.Put", err)
}

// Get - read a value for a given key
//
// returns nil if the key does not exist; copy the result if it must
// be preserved
func (p *PoolHandle) Get(key string) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.Get nil database")
		return nil
	}
	value, err := poolData.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// Has - check if a key exists
func (p *PoolHandle) Has(key string) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return false
	}
	value, err := poolData.db.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// Delete - remove a key from the pool
func (p *PoolHandle) Delete(key string) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.Delete nil database")
		return
	}
	err := poolData.db.Delete(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Delete", err)
}

// DeleteAll - remove every key in the pool with one ranged delete
//
// this is the primitive behind the purge-on-logout discipline
func (p *PoolHandle) DeleteAll() {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.DeleteAll nil database")
		return
	}

	batch := new(leveldb.Batch)

	iter := poolData.db.NewIterator(&ldb_util.Range{
		Start: []byte{p.prefix},
		Limit: p.limit,
	}, nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	logger.PanicIfError("pool.DeleteAll iterator", iter.Error())

	err := poolData.db.Write(batch, nil)
	logger.PanicIfError("pool.DeleteAll", err)
}

// Items - all key/value pairs in the pool, in key order
func (p *PoolHandle) Items() []Element {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return nil
	}

	items := []Element{}

	iter := poolData.db.NewIterator(&ldb_util.Range{
		Start: []byte{p.prefix},
		Limit: p.limit,
	}, nil)
	for iter.Next() {
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		items = append(items, Element{
			Key:   string(iter.Key()[1:]),
			Value: value,
		})
	}
	iter.Release()
	logger.PanicIfError("pool.Items iterator", iter.Error())

	return items
}

// Size - number of keys in the pool
func (p *PoolHandle) Size() int {
	return len(p.Items())
}
