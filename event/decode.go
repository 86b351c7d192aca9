// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"bytes"
	"encoding/json"

	"github.com/marketsync/marketd/fault"
)

// BalanceUpdate - authoritative wallet balance as a decimal string
type BalanceUpdate struct {
	Balance string
}

// CartUpdate - full replacement cart
type CartUpdate struct {
	Cart json.RawMessage
}

// OrderUpdate - a single created or changed order
type OrderUpdate struct {
	OrderID string
	Order   json.RawMessage
}

// FavoriteUpdate - full replacement favourites data
type FavoriteUpdate struct {
	Data json.RawMessage
}

// SettingsUpdate - process wide system settings
type SettingsUpdate struct {
	Settings json.RawMessage
}

// Decode - decode a wire frame pair into a typed event
//
// a missing required field is a malformed payload; the caller drops
// the event and carries on
func Decode(name string, data []byte) (*Event, error) {

	kind, err := KindFromName(name)
	if nil != err {
		return nil, err
	}

	switch kind {

	case BalanceUpdated:
		wire := struct {
			Balance *string `json:"balance"`
		}{}
		if err := json.Unmarshal(data, &wire); nil != err || nil == wire.Balance {
			return nil, fault.ErrMalformedEventPayload
		}
		return &Event{
			Kind:    kind,
			Payload: &BalanceUpdate{Balance: *wire.Balance},
		}, nil

	case CartUpdated:
		wire := struct {
			Cart json.RawMessage `json:"cart"`
		}{}
		if err := json.Unmarshal(data, &wire); nil != err || 0 == len(wire.Cart) {
			return nil, fault.ErrMalformedEventPayload
		}
		return &Event{
			Kind:    kind,
			Payload: &CartUpdate{Cart: wire.Cart},
		}, nil

	case OrderUpdated:
		wire := struct {
			Order json.RawMessage `json:"order"`
		}{}
		if err := json.Unmarshal(data, &wire); nil != err || 0 == len(wire.Order) {
			return nil, fault.ErrMalformedEventPayload
		}
		id, err := orderID(wire.Order)
		if nil != err {
			return nil, err
		}
		return &Event{
			Kind: kind,
			Payload: &OrderUpdate{
				OrderID: id,
				Order:   wire.Order,
			},
		}, nil

	case FavoriteUpdated:
		wire := struct {
			Data json.RawMessage `json:"data"`
		}{}
		if err := json.Unmarshal(data, &wire); nil != err || 0 == len(wire.Data) {
			return nil, fault.ErrMalformedEventPayload
		}
		return &Event{
			Kind:    kind,
			Payload: &FavoriteUpdate{Data: wire.Data},
		}, nil

	case SettingsUpdated:
		wire := struct {
			Settings json.RawMessage `json:"settings"`
		}{}
		if err := json.Unmarshal(data, &wire); nil != err || 0 == len(wire.Settings) {
			return nil, fault.ErrMalformedEventPayload
		}
		return &Event{
			Kind:    kind,
			Payload: &SettingsUpdate{Settings: wire.Settings},
		}, nil

	default:
		return nil, fault.ErrUnknownEventName
	}
}

// OrderID - extract the id field of an order object
//
// the server sends ids as either strings or numbers
func OrderID(order json.RawMessage) (string, error) {
	return orderID(order)
}

func orderID(order json.RawMessage) (string, error) {
	wire := struct {
		ID interface{} `json:"id"`
	}{}

	decoder := json.NewDecoder(bytes.NewReader(order))
	decoder.UseNumber()
	if err := decoder.Decode(&wire); nil != err || nil == wire.ID {
		return "", fault.ErrMalformedEventPayload
	}

	switch id := wire.ID.(type) {
	case string:
		if "" == id {
			return "", fault.ErrMalformedEventPayload
		}
		return id, nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fault.ErrMalformedEventPayload
	}
}
