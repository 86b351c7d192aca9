// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/marketsync/marketd/fault"
)

// Kind - type to denote one kind of server pushed event
type Kind int

// all possible kinds
const (
	BalanceUpdated Kind = iota
	CartUpdated
	OrderUpdated
	FavoriteUpdated
	SettingsUpdated
	maximum
)

// wire names as sent by the server
const (
	balanceUpdatedName  = "balance:updated"
	cartUpdatedName     = "cart:updated"
	orderUpdatedName    = "order:updated"
	favoriteUpdatedName = "favorite:updated"
	settingsUpdatedName = "system:settings-updated"
)

// Event - one decoded inbound event
type Event struct {
	Kind    Kind
	Payload interface{} // one of the *Update structs below
}

// String - the wire name of a kind
func (k Kind) String() string {
	switch k {
	case BalanceUpdated:
		return balanceUpdatedName
	case CartUpdated:
		return cartUpdatedName
	case OrderUpdated:
		return orderUpdatedName
	case FavoriteUpdated:
		return favoriteUpdatedName
	case SettingsUpdated:
		return settingsUpdatedName
	default:
		return "*unknown*"
	}
}

// KindFromName - map a wire name back to its kind
func KindFromName(name string) (Kind, error) {
	switch name {
	case balanceUpdatedName:
		return BalanceUpdated, nil
	case cartUpdatedName:
		return CartUpdated, nil
	case orderUpdatedName:
		return OrderUpdated, nil
	case favoriteUpdatedName:
		return FavoriteUpdated, nil
	case settingsUpdatedName:
		return SettingsUpdated, nil
	default:
		return maximum, fault.ErrUnknownEventName
	}
}

// Kinds - every kind, for bulk handler registration
func Kinds() []Kind {
	return []Kind{
		BalanceUpdated,
		CartUpdated,
		OrderUpdated,
		FavoriteUpdated,
		SettingsUpdated,
	}
}
