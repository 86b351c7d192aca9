// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store - the durable on-device session store
//
//	***** Data Structure *****
//
//	Pool            Prefix    Scope      Contents
//	|___ Accounts     A       session    userId, token, loginAt
//	|___ Balance      B       session    wallet balance projection
//	|___ Cart         C       session    shopping cart projection
//	|___ Orders       O       session    recent orders projection
//	|___ Favorites    F       session    favourites projection
//	|___ Locale       L       device     preferred locale
//	|___ Settings     S       device     system settings projection
//	|___ TestData     Z       session    reserved for tests
//
//	***** Purpose *****
//
//	each pool is a one byte key prefix inside a single leveldb so that
//	a whole pool can be purged with one ranged delete; "session" pools
//	must never survive a logout, "device" pools persist across users
package store
