// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package session - login and logout lifecycle
//
// login wires the event channel, reconciliation handlers and heartbeat
// together; logout tears them down and purges every session scoped
// cache entry so nothing of one user is visible to the next
package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/marketsync/marketd/bus"
	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/channel"
	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/heartbeat"
	"github.com/marketsync/marketd/mode"
	"github.com/marketsync/marketd/reconcile"
	"github.com/marketsync/marketd/store"
)

// cache key of the active account record
const currentAccountKey = "current"

// globals for this module
type sessionData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	userID string
	token  string

	// set once during initialise
	initialised bool
}

// global data
var globalData sessionData

// Initialise - setup the session controller
//
// an authentication denial from the channel forces a logout, since the
// stored token is no longer usable
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("session")
	globalData.log.Info("starting…")

	channel.OnAuthenticationFailure(func(err error) {
		globalData.log.Warnf("channel authentication failed: %s", err)
		Logout()
	})

	globalData.userID = ""
	globalData.token = ""

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - log out and shut down
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	Logout()

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.initialised = false

	return nil
}

// Login - establish a session for one user
//
// a login over an existing session for a different user performs the
// full logout first; repeating the current login is a no-op
func Login(userID string, token string) error {
	if "" == userID {
		return fault.ErrMissingUserId
	}
	if "" == token {
		return fault.ErrMissingBearerToken
	}

	globalData.Lock()
	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}
	if userID == globalData.userID && token == globalData.token {
		globalData.Unlock()
		return nil
	}
	previous := globalData.userID
	globalData.Unlock()

	if "" != previous {
		Logout()
	}

	log := globalData.log
	log.Infof("login: %s", userID)

	// persist the account record so the UI can render who is signed in
	// before any event arrives
	account, err := json.Marshal(struct {
		UserID  string    `json:"user_id"`
		Token   string    `json:"token"`
		LoginAt time.Time `json:"login_at"`
	}{
		UserID:  userID,
		Token:   token,
		LoginAt: time.Now().UTC(),
	})
	if nil != err {
		return err
	}
	cache.Put(store.Pool.Accounts, currentAccountKey, account)

	// handlers were dropped by the previous disconnect
	reconcile.RegisterHandlers()

	err = channel.Connect(token)
	if nil != err {
		channel.Disconnect()
		cache.PurgeSession()
		return err
	}

	err = heartbeat.Start(userID, token)
	if fault.ErrNotInitialised == err {
		// heartbeat reporting is optional
		log.Debug("heartbeat not configured")
	} else if nil != err {
		channel.Disconnect()
		cache.PurgeSession()
		return err
	}

	globalData.Lock()
	globalData.userID = userID
	globalData.token = token
	globalData.Unlock()

	mode.Set(mode.Authenticated)

	announce("login", userID)

	return nil
}

// Logout - tear the session down
//
// idempotent; on return no session scoped state remains in memory or
// on disk
func Logout() {

	globalData.Lock()
	if !globalData.initialised || "" == globalData.userID {
		globalData.Unlock()
		return
	}
	userID := globalData.userID
	globalData.userID = ""
	globalData.token = ""
	globalData.Unlock()

	globalData.log.Infof("logout: %s", userID)

	heartbeat.Stop()
	channel.Disconnect()
	cache.PurgeSession()

	mode.Set(mode.Anonymous)

	announce("logout", userID)
}

// CurrentUser - the logged in user id
func CurrentUser() (string, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if "" == globalData.userID {
		return "", fault.ErrNoCurrentSession
	}
	return globalData.userID, nil
}

// IsActive - check if a session is established
func IsActive() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return "" != globalData.userID
}

// publish a session transition on the bus
func announce(status string, userID string) {
	data, err := json.Marshal(struct {
		Status string `json:"status"`
		UserID string `json:"user_id"`
	}{
		Status: status,
		UserID: userID,
	})
	if nil != err {
		return
	}
	bus.Send(bus.TopicSession, data)
}
