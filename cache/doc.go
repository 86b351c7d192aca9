// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cache - two tier read facade over the durable store
//
// authoritative values live in the leveldb pools; optimistic local
// writes go to an in-memory overlay with a short TTL and are
// superseded the moment an authoritative write for the same key
// arrives; reads merge tentative-over-authoritative
package cache
