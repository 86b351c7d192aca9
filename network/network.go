// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package network - marketplace backend environment names
package network

// names of the possible backend environments
const (
	Live  = "live"
	Test  = "test"
	Local = "local"
)

// Valid - check the environment name is one of the known set
func Valid(name string) bool {
	switch name {
	case Live, Test, Local:
		return true
	default:
		return false
	}
}
