// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package heartbeat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/fixtures"
	"github.com/marketsync/marketd/heartbeat"
)

type report struct {
	UserID   string `json:"user_id"`
	ClientID string `json:"client_id"`
}

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()
	m.Run()
}

func TestMissingURL(t *testing.T) {
	err := heartbeat.Initialise(&heartbeat.Configuration{}, "client-1")
	assert.Equal(t, fault.ErrMissingHeartbeatURL, err, "blank url was accepted")
}

func TestReporting(t *testing.T) {

	var mutex sync.Mutex
	received := []report{}
	authorization := ""

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mutex.Lock()
		defer mutex.Unlock()

		authorization = r.Header.Get("Authorization")
		rep := report{}
		json.NewDecoder(r.Body).Decode(&rep)
		received = append(received, rep)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := heartbeat.Initialise(&heartbeat.Configuration{
		URL:      server.URL,
		Interval: 60,
	}, "client-1")
	require.Nil(t, err, "initialise error")
	defer heartbeat.Finalise()

	err = heartbeat.Start("", "token-1")
	assert.Equal(t, fault.ErrMissingUserId, err, "blank user was accepted")
	assert.False(t, heartbeat.IsRunning())

	err = heartbeat.Start("user-1", "token-1")
	require.Nil(t, err, "start error")
	assert.True(t, heartbeat.IsRunning())

	// second start is a no-op
	err = heartbeat.Start("user-1", "token-1")
	require.Nil(t, err, "repeat start error")

	// the first report is immediate
	deadline := time.Now().Add(5 * time.Second)
	for {
		mutex.Lock()
		n := len(received)
		mutex.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no report arrived")
		}
		time.Sleep(10 * time.Millisecond)
	}

	heartbeat.Stop()
	assert.False(t, heartbeat.IsRunning())

	// stop again is harmless
	heartbeat.Stop()

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, "Bearer token-1", authorization, "wrong authorization header")
	assert.Equal(t, "user-1", received[0].UserID, "wrong user")
	assert.Equal(t, "client-1", received[0].ClientID, "wrong client")
	assert.True(t, heartbeat.TotalBeats() >= 1, "beat was not counted")
}
