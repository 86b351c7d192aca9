// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/marketd/bus"
	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/channel"
	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/fixtures"
	"github.com/marketsync/marketd/mode"
	"github.com/marketsync/marketd/network"
	"github.com/marketsync/marketd/session"
	"github.com/marketsync/marketd/store"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

// nothing listens here; connection attempts simply retry in the
// background which is irrelevant to the lifecycle under test
const unusedEndpoint = "127.0.0.1:29876"

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	os.RemoveAll(databaseFileName)

	if err := mode.Initialise(network.Local); nil != err {
		panic(err)
	}
	if err := store.Initialise(databaseFileName); nil != err {
		panic(err)
	}
	if err := cache.Initialise(); nil != err {
		panic(err)
	}
	err := channel.Initialise(&channel.Configuration{
		Address:         unusedEndpoint,
		ServerPublicKey: strings.Repeat("ab", 32),
	})
	if nil != err {
		panic(err)
	}
	if err := session.Initialise(); nil != err {
		panic(err)
	}

	rc := m.Run()

	session.Finalise()
	channel.Finalise()
	cache.Finalise()
	store.Finalise()
	mode.Finalise()
	os.RemoveAll(databaseFileName)
	os.Exit(rc)
}

type transition struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

func TestSessionLifecycle(t *testing.T) {

	transitions := []transition{}
	id := bus.Subscribe(bus.TopicSession, func(m bus.Message) {
		tr := transition{}
		if nil == json.Unmarshal(m.Data, &tr) {
			transitions = append(transitions, tr)
		}
	})
	defer bus.Unsubscribe(bus.TopicSession, id)

	_, err := session.CurrentUser()
	assert.Equal(t, fault.ErrNoCurrentSession, err, "phantom session")
	assert.False(t, session.IsActive())

	err = session.Login("", "token-1")
	assert.Equal(t, fault.ErrMissingUserId, err, "blank user was accepted")
	err = session.Login("user-1", "")
	assert.Equal(t, fault.ErrMissingBearerToken, err, "blank token was accepted")

	// device scoped state set before any session
	cache.Put(store.Pool.Settings, "settings", []byte(`{"theme":"dark"}`))

	err = session.Login("user-1", "token-1")
	require.Nil(t, err, "login error")

	user, err := session.CurrentUser()
	require.Nil(t, err)
	assert.Equal(t, "user-1", user, "wrong user")
	assert.True(t, session.IsActive())
	assert.True(t, mode.Is(mode.Authenticated), "mode not authenticated")
	assert.NotEqual(t, channel.Disconnected, channel.State(), "channel was not started")

	account, _, err := cache.Get(store.Pool.Accounts, "current")
	require.Nil(t, err, "account record missing")
	assert.Contains(t, string(account), "user-1")

	// repeat login is a no-op
	err = session.Login("user-1", "token-1")
	require.Nil(t, err, "repeat login error")

	// some session scoped state
	cache.Put(store.Pool.Balance, "balance", []byte(`"999.99"`))

	session.Logout()

	_, err = session.CurrentUser()
	assert.Equal(t, fault.ErrNoCurrentSession, err, "session survived logout")
	assert.True(t, mode.Is(mode.Anonymous), "mode not anonymous")
	assert.Equal(t, channel.Disconnected, channel.State(), "channel still up")

	_, _, err = cache.Get(store.Pool.Balance, "balance")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "balance survived purge")
	_, _, err = cache.Get(store.Pool.Accounts, "current")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "account survived purge")

	// device scoped state survives
	settings, _, err := cache.Get(store.Pool.Settings, "settings")
	require.Nil(t, err, "settings were purged")
	assert.JSONEq(t, `{"theme":"dark"}`, string(settings))

	// repeat logout is harmless
	session.Logout()

	// the next user must not see the previous user's data
	err = session.Login("user-2", "token-2")
	require.Nil(t, err, "second login error")
	_, _, err = cache.Get(store.Pool.Balance, "balance")
	assert.Equal(t, fault.ErrCacheKeyNotFound, err, "balance leaked across sessions")

	// switching users directly performs the implicit logout
	err = session.Login("user-3", "token-3")
	require.Nil(t, err, "switch login error")
	user, err = session.CurrentUser()
	require.Nil(t, err)
	assert.Equal(t, "user-3", user)

	session.Logout()

	statuses := []string{}
	for _, tr := range transitions {
		statuses = append(statuses, tr.Status+":"+tr.UserID)
	}
	assert.Equal(t, []string{
		"login:user-1",
		"logout:user-1",
		"login:user-2",
		"logout:user-2",
		"login:user-3",
		"logout:user-3",
	}, statuses, "wrong transition sequence")
}

// a failed login must not leave reconciliation handlers behind, or the
// next successful login would register them a second time and every
// event would be applied twice
func TestFailedLoginLeavesNoHandlers(t *testing.T) {

	// taking the channel away makes the connect step fail
	channel.Finalise()

	err := session.Login("user-9", "token-9")
	assert.Equal(t, fault.ErrNotInitialised, err, "login worked without a channel")
	assert.False(t, session.IsActive())
	assert.Equal(t, 0, channel.HandlersRegistered(), "handlers left by failed login")

	err = channel.Initialise(&channel.Configuration{
		Address:         unusedEndpoint,
		ServerPublicKey: strings.Repeat("ab", 32),
	})
	require.Nil(t, err, "channel restart error")

	require.Nil(t, session.Login("user-9", "token-9"), "login error")
	registered := channel.HandlersRegistered()
	assert.NotZero(t, registered, "no handlers after login")

	session.Logout()
	assert.Equal(t, 0, channel.HandlersRegistered(), "handlers survived logout")

	require.Nil(t, session.Login("user-9", "token-9"), "repeat login error")
	assert.Equal(t, registered, channel.HandlersRegistered(), "handlers doubled on repeat login")

	session.Logout()
}
