// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store_test

import (
	"os"
	"testing"

	"github.com/marketsync/marketd/fixtures"
	"github.com/marketsync/marketd/store"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName)
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()
	err := store.Initialise(databaseFileName)
	if nil != err {
		t.Fatalf("store initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	store.Finalise()
	removeFiles()
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()
	m.Run()
}
