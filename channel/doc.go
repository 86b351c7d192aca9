// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel - the persistent event channel client
//
// maintains at most one authenticated duplex connection to the
// marketplace backend, dispatches inbound events to registered
// handlers in arrival order and reconnects with a capped exponential
// backoff after unexpected closure
//
// an authentication denial is terminal: it is reported to the session
// controller and no reconnect is scheduled, since retrying with a dead
// token cannot succeed
package channel
