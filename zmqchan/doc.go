// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zmqchan - thin wrapper around ZeroMQ sockets
//
// provides the client socket used for the event channel, a poller that
// supports socket removal and the inproc signal pair used to wake the
// poll loop for commands and shutdown
package zmqchan
