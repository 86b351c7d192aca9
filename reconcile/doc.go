// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reconcile - apply inbound server events to the local cache
//
// each event kind has one apply rule: balance, cart and favourites are
// authoritative replacements; an order is merged into the stored order
// list by id; settings are compared first so an unchanged value causes
// no write and no broadcast
//
// applying the same event twice yields the same cache state, so a
// replay after a reconnect is harmless
package reconcile
