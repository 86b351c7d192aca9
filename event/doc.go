// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package event - server pushed mutation events
//
// each wire event name maps to a Kind with a strongly typed payload so
// that stringly typed names and untyped JSON do not leak into the rest
// of the codebase
package event
