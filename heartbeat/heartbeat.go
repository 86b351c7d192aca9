// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package heartbeat - periodic presence reports for a logged in user
//
// posts a small JSON document to the backend at a fixed interval while
// a session is active; a failed report is logged and dropped, the next
// tick simply tries again
package heartbeat

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/marketsync/marketd/background"
	"github.com/marketsync/marketd/counter"
	"github.com/marketsync/marketd/fault"
)

// Configuration - heartbeat endpoint and cadence
type Configuration struct {
	URL      string `gluamapper:"url" json:"url"`
	Interval int    `gluamapper:"interval" json:"interval"` // seconds
}

const (
	defaultInterval = 60 * time.Second
	requestTimeout  = 10 * time.Second
)

// globals for this module
type heartbeatData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	url      string
	interval time.Duration
	clientID string
	client   *http.Client

	// for background, only while a session is active
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData heartbeatData

// count of successful reports
var totalBeats counter.Counter

// Initialise - setup the reporter
//
// no reports are sent until Start provides a user and token
func Initialise(configuration *Configuration, clientID string) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	if "" == configuration.URL {
		return fault.ErrMissingHeartbeatURL
	}

	globalData.log = logger.New("heartbeat")
	globalData.log.Info("starting…")

	globalData.url = configuration.URL
	globalData.interval = defaultInterval
	if configuration.Interval > 0 {
		globalData.interval = time.Duration(configuration.Interval) * time.Second
	}
	globalData.clientID = clientID
	globalData.client = &http.Client{
		Timeout: requestTimeout,
	}
	totalBeats = 0

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop any running reporter
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	Stop()

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.initialised = false

	return nil
}

// Start - begin reporting for one user
//
// the first report is sent immediately; a second Start without an
// intervening Stop is a no-op
func Start(userID string, token string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if "" == userID {
		return fault.ErrMissingUserId
	}
	if nil != globalData.background {
		return nil
	}

	globalData.log.Infof("start reporting for: %s", userID)

	processes := background.Processes{
		&beater{
			log:    globalData.log,
			userID: userID,
			token:  token,
		},
	}
	globalData.background = background.Start(processes, nil)

	return nil
}

// Stop - cease reporting
//
// idempotent; safe to call with no reporter running
func Stop() {
	globalData.Lock()
	defer globalData.Unlock()

	if nil == globalData.background {
		return
	}

	globalData.log.Info("stop reporting")
	globalData.background.Stop()
	globalData.background = nil
}

// IsRunning - check if a reporter is active
func IsRunning() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return nil != globalData.background
}

// TotalBeats - count of reports accepted by the backend
func TotalBeats() uint64 {
	return totalBeats.Uint64()
}

// beater - the background process
type beater struct {
	log    *logger.L
	userID string
	token  string
}

// Run - send one report immediately, then one per interval
func (b *beater) Run(args interface{}, shutdown <-chan struct{}) {

	log := b.log
	log.Info("beater: starting…")

	globalData.RLock()
	interval := globalData.interval
	globalData.RUnlock()

	b.beat()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			b.beat()
		}
	}

	log.Info("beater: stopped")
}

// send a single report, errors are logged and dropped
func (b *beater) beat() {

	log := b.log

	globalData.RLock()
	url := globalData.url
	clientID := globalData.clientID
	client := globalData.client
	globalData.RUnlock()

	body, err := json.Marshal(struct {
		UserID   string `json:"user_id"`
		ClientID string `json:"client_id"`
	}{
		UserID:   b.userID,
		ClientID: clientID,
	})
	if nil != err {
		return
	}

	request, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if nil != err {
		log.Warnf("request error: %s", err)
		return
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+b.token)

	response, err := client.Do(request)
	if nil != err {
		log.Debugf("report error: %s", err)
		return
	}
	defer response.Body.Close()
	io.Copy(ioutil.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		log.Debugf("report rejected: %s", response.Status)
		return
	}

	totalBeats.Increment()
	log.Debugf("report sent for: %s", b.userID)
}
