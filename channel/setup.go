// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/google/uuid"
	zmq "github.com/pebbe/zmq4"

	"github.com/marketsync/marketd/background"
	"github.com/marketsync/marketd/counter"
	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/util"
	"github.com/marketsync/marketd/zmqchan"
)

// Configuration - connection parameters for the event channel
//
// the client key pair is optional; an ephemeral pair is generated when
// both halves are blank
type Configuration struct {
	Address         string `gluamapper:"address" json:"address"`
	ServerPublicKey string `gluamapper:"server_public_key" json:"server_public_key"`
	PublicKey       string `gluamapper:"public_key" json:"public_key"`
	PrivateKey      string `gluamapper:"private_key" json:"private_key"`
}

// timing for connection establishment and recovery
//
// variables so tests can run against shortened windows
var (
	handshakeTimeout      = 10 * time.Second
	reconnectDelayInitial = 1 * time.Second
	reconnectDelayMaximum = 30 * time.Second
)

// internal signalling channel to wake the poll loop
const signalAddress = "inproc://marketd-channel-signal"

// globals for this module
type channelData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	clientID        string // stable identifier for this process
	address         string // canonical host:port of the backend
	serverPublicKey []byte

	client *zmqchan.Client
	poller *zmqchan.Poller
	push   *zmq.Socket
	pull   *zmq.Socket

	state         ConnectionState
	token         string // bearer token for the wanted connection
	wantConnected bool   // cleared synchronously by Disconnect

	onAuthFailure func(error)

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData channelData

// delivery counters
var (
	totalEvents     counter.Counter
	discardedEvents counter.Counter
	reconnections   counter.Counter
)

// Initialise - setup the event channel client
//
// the channel starts disconnected; Connect is driven by the session
// controller after a successful login
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("channel")
	globalData.log.Info("starting…")

	address, err := util.CanonicalIPandPort(configuration.Address)
	if nil != err {
		return err
	}
	globalData.address = address

	serverPublicKey, err := hex.DecodeString(configuration.ServerPublicKey)
	if nil != err {
		return err
	}
	if 32 != len(serverPublicKey) {
		return fault.ErrInvalidPublicKey
	}
	globalData.serverPublicKey = serverPublicKey

	publicKey, privateKey, err := clientKeypair(configuration)
	if nil != err {
		return err
	}

	globalData.clientID = uuid.New().String()
	globalData.log.Infof("client id: %s", globalData.clientID)

	client, err := zmqchan.NewClient(zmq.DEALER, privateKey, publicKey, handshakeTimeout)
	if nil != err {
		return err
	}
	globalData.client = client

	push, pull, err := zmqchan.NewSignalPair(signalAddress)
	if nil != err {
		return err
	}
	globalData.push = push
	globalData.pull = pull

	globalData.poller = zmqchan.NewPoller()
	globalData.poller.Add(pull, zmq.POLLIN)
	client.BeginPolling(globalData.poller, zmq.POLLIN)

	globalData.state = Disconnected
	globalData.token = ""
	globalData.wantConnected = false

	totalEvents = 0
	discardedEvents = 0
	reconnections = 0

	// all data initialised
	globalData.initialised = true

	// start background processes
	globalData.log.Info("start background…")

	processes := background.Processes{
		&channeller{log: globalData.log},
	}

	globalData.background = background.Start(processes, nil)

	return nil
}

// decode the configured client key pair, generating an ephemeral pair
// if none is configured
func clientKeypair(configuration *Configuration) ([]byte, []byte, error) {

	if "" == configuration.PublicKey && "" == configuration.PrivateKey {
		public, private, err := zmq.NewCurveKeypair()
		if nil != err {
			return nil, nil, err
		}
		return []byte(zmq.Z85decode(public)), []byte(zmq.Z85decode(private)), nil
	}

	publicKey, err := hex.DecodeString(configuration.PublicKey)
	if nil != err {
		return nil, nil, err
	}
	privateKey, err := hex.DecodeString(configuration.PrivateKey)
	if nil != err {
		return nil, nil, err
	}
	return publicKey, privateKey, nil
}

// Finalise - stop all background processes
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// stop background
	globalData.background.Stop()

	// the poll loop closes the pull and client sockets on its way out
	globalData.push.Close()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// ClientID - the stable identifier sent in the handshake and heartbeat
func ClientID() string {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.clientID
}

// OnAuthenticationFailure - register the callback for a terminal
// authentication denial
//
// the callback runs on its own goroutine; it may call Disconnect
func OnAuthenticationFailure(fn func(error)) {
	globalData.Lock()
	globalData.onAuthFailure = fn
	globalData.Unlock()
}

// Connect - bring the channel up with a bearer token
//
// asynchronous: the state moves to Connecting immediately and the
// handshake proceeds in the background; a repeat call with the same
// token is a no-op, a different token tears down the old connection
// and establishes a new one
func Connect(token string) error {
	if "" == token {
		return fault.ErrMissingBearerToken
	}

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	if globalData.wantConnected && token == globalData.token {
		return nil
	}

	globalData.token = token
	globalData.wantConnected = true
	globalData.state = Connecting

	_, err := globalData.push.Send("connect", 0)
	return err
}

// Disconnect - bring the channel down and drop all handlers
//
// idempotent; the state is Disconnected on return, any in-flight
// reconnect attempt becomes a no-op and no handler can run after this
// returns, so the purge that follows a logout cannot race a delivery
func Disconnect() {
	globalData.Lock()
	if globalData.initialised {
		globalData.wantConnected = false
		globalData.token = ""
		globalData.state = Disconnected
		globalData.push.Send("disconnect", 0)
	}
	globalData.Unlock()

	removeAllHandlers()

	// a delivery that snapshotted its handlers before the clear above
	// may still be running on the poll goroutine; wait it out
	dispatchLock.Lock()
	dispatchLock.Unlock()
}

// State - the current connection state
func State() ConnectionState {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.state
}

// TotalEvents - count of events delivered to handlers
func TotalEvents() uint64 {
	return totalEvents.Uint64()
}

// DiscardedEvents - count of frames dropped as unknown or malformed
func DiscardedEvents() uint64 {
	return discardedEvents.Uint64()
}

// TotalReconnects - count of failed connection attempts
func TotalReconnects() uint64 {
	return reconnections.Uint64()
}
