// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

// ConnectionState - the state of the single logical connection
type ConnectionState int

// all possible connection states
const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
)

// String - connection state represented as a string
func (state ConnectionState) String() string {
	switch state {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "*Unknown*"
	}
}
