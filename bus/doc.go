// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bus - change notifications for cache consumers
//
// screens and other consumers subscribe to a topic and are called in
// subscription order whenever the reconciler or the session
// controller publishes a change
package bus
