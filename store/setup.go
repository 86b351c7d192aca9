// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_errors "github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/marketsync/marketd/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Accounts  *PoolHandle `prefix:"A" scope:"session"`
	Balance   *PoolHandle `prefix:"B" scope:"session"`
	Cart      *PoolHandle `prefix:"C" scope:"session"`
	Orders    *PoolHandle `prefix:"O" scope:"session"`
	Favorites *PoolHandle `prefix:"F" scope:"session"`
	Locale    *PoolHandle `prefix:"L" scope:"device"`
	Settings  *PoolHandle `prefix:"S" scope:"device"`
	TestData  *PoolHandle `prefix:"Z" scope:"session"`
}

// Pool - the set of exported pools
var Pool pools

// holds the database handle
var poolData struct {
	sync.RWMutex
	db           *leveldb.DB
	sessionPools []*PoolHandle
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		return fault.ErrAlreadyInitialised
	}

	db, err := leveldb.OpenFile(database, nil)
	if ldb_errors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(database, nil)
	}
	if nil != err {
		return err
	}
	poolData.db = db

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	poolData.sessionPools = nil

	// scan each field to set up its pool handle
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)
		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			dbClose()
			return fault.ErrInvalidPoolPrefix
		}

		prefix := prefixTag[0]
		p := &PoolHandle{
			prefix: prefix,
			limit:  []byte{prefix + 1},
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))

		if "session" == fieldInfo.Tag.Get("scope") {
			poolData.sessionPools = append(poolData.sessionPools, p)
		}
	}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()
	dbClose()
}

// SessionPools - every pool that must be purged on logout
//
// built from the scope tags above so that a new session scoped pool is
// automatically included in the purge
func SessionPools() []*PoolHandle {
	poolData.RLock()
	defer poolData.RUnlock()

	list := make([]*PoolHandle, len(poolData.sessionPools))
	copy(list, poolData.sessionPools)
	return list
}

// IsInitialised - check the database is open
func IsInitialised() bool {
	poolData.RLock()
	defer poolData.RUnlock()
	return nil != poolData.db
}

// must hold lock
func dbClose() {
	if nil != poolData.db {
		poolData.db.Close()
		poolData.db = nil
	}
	poolData.sessionPools = nil
}
