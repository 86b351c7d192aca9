// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/marketsync/marketd/event"
	"github.com/marketsync/marketd/fault"
)

// channeller - background process owning the socket
//
// all socket receives happen on the poll goroutine so the zmq sockets
// are never shared between threads
type channeller struct {
	log   *logger.L
	delay time.Duration // current backoff window
}

// Run - the background process
func (chn *channeller) Run(args interface{}, shutdown <-chan struct{}) {

	log := chn.log
	log.Info("starting…")

	done := make(chan struct{})
	go chn.poll(done)

	<-shutdown
	log.Info("shutting down…")

	globalData.Lock()
	globalData.push.Send("stop", 0)
	globalData.Unlock()
	<-done

	log.Info("stopped")
}

// the poll loop
//
// blocks until a socket is readable or, while a reconnect is pending,
// until the backoff window expires
func (chn *channeller) poll(done chan<- struct{}) {
	defer close(done)

	log := chn.log
	chn.delay = reconnectDelayInitial

loop:
	for {
		timeout := time.Duration(-1) // block until a socket event
		globalData.RLock()
		retrying := globalData.wantConnected && Reconnecting == globalData.state
		globalData.RUnlock()
		if retrying {
			timeout = chn.delay
		}

		polled, err := globalData.poller.Poll(timeout)
		if nil != err {
			log.Errorf("poll error: %s", err)
			continue loop
		}

		if 0 == len(polled) {
			// backoff window expired, retry the connection
			if retrying && !chn.attempt() {
				chn.delay *= 2
				if chn.delay > reconnectDelayMaximum {
					chn.delay = reconnectDelayMaximum
				}
			}
			continue loop
		}

		for _, p := range polled {
			switch s := p.Socket; s {

			case globalData.pull:
				command, err := s.Recv(0)
				if nil != err {
					log.Errorf("signal receive error: %s", err)
					continue loop
				}
				switch command {
				case "stop":
					break loop
				case "connect":
					chn.delay = reconnectDelayInitial
					chn.attempt()
				case "disconnect":
					globalData.client.Close()
					chn.delay = reconnectDelayInitial
				default:
					log.Errorf("unexpected signal: %q", command)
				}

			default:
				if globalData.client.IsSocket(s) {
					chn.deliver()
				}
			}
		}
	}

	// the poll goroutine owns the receive side sockets
	globalData.client.Close()
	globalData.pull.Close()
}

// one connection attempt including the application handshake
//
// returns true when the channel is up; false schedules a retry unless
// the failure was an authentication denial, which is terminal
func (chn *channeller) attempt() bool {

	log := chn.log

	globalData.RLock()
	token := globalData.token
	want := globalData.wantConnected
	address := globalData.address
	serverPublicKey := globalData.serverPublicKey
	globalData.RUnlock()

	// a logout can land between scheduling and attempting
	if !want {
		return false
	}

	err := globalData.client.Connect(address, serverPublicKey)
	if nil == err {
		err = chn.handshake(token)
	}

	switch {

	case nil == err:
		globalData.Lock()
		if globalData.wantConnected {
			globalData.state = Connected
		}
		globalData.Unlock()
		chn.delay = reconnectDelayInitial
		log.Infof("connected to: %s", address)
		return true

	case fault.IsErrAuthentication(err):
		log.Warnf("authentication denied by: %s", address)
		globalData.client.Close()
		globalData.Lock()
		globalData.wantConnected = false
		globalData.token = ""
		globalData.state = Disconnected
		fn := globalData.onAuthFailure
		globalData.Unlock()
		if nil != fn {
			// the callback tears the session down and may call
			// Disconnect, so keep it off the poll goroutine
			go fn(err)
		}
		return false

	default:
		log.Warnf("connection to: %s failed: %s", address, err)
		globalData.client.Close()
		reconnections.Increment()
		globalData.Lock()
		if globalData.wantConnected {
			globalData.state = Reconnecting
		}
		globalData.Unlock()
		return false
	}
}

// the application level handshake on a fresh socket
func (chn *channeller) handshake(token string) error {

	client := globalData.client

	err := client.Send("hello", globalData.clientID, token)
	if nil != err {
		return err
	}

	// the socket receive timeout bounds this wait
	reply, err := client.Receive(0)
	if nil != err {
		return err
	}
	if 0 == len(reply) {
		return fault.ErrUnexpectedServerReply
	}

	switch string(reply[0]) {
	case "ok":
		if len(reply) > 1 {
			chn.log.Infof("authenticated as: %s", reply[1])
		}
		return nil
	case "denied":
		return fault.ErrAuthenticationDenied
	default:
		return fault.ErrUnexpectedServerReply
	}
}

// receive one inbound message and dispatch it
func (chn *channeller) deliver() {

	log := chn.log

	data, err := globalData.client.Receive(0)
	if nil != err {
		// transport failure, drop the socket and schedule a reconnect
		log.Warnf("receive error: %s", err)
		globalData.client.Close()
		reconnections.Increment()
		globalData.Lock()
		if globalData.wantConnected {
			globalData.state = Reconnecting
		}
		globalData.Unlock()
		chn.delay = reconnectDelayInitial
		return
	}

	// server liveness probe
	if 1 == len(data) && "ping" == string(data[0]) {
		err := globalData.client.Send("pong")
		if nil != err {
			log.Warnf("pong error: %s", err)
		}
		return
	}

	if 2 != len(data) {
		log.Warnf("discard %d frame message", len(data))
		discardedEvents.Increment()
		return
	}

	name := string(data[0])
	ev, err := event.Decode(name, data[1])
	if nil != err {
		log.Warnf("discard event: %q error: %s", name, err)
		discardedEvents.Increment()
		return
	}

	log.Debugf("deliver event: %q", name)
	dispatch(ev)
}

// run the registered handlers for one event
//
// the lock lets Disconnect wait for an in-flight delivery to finish
// before the session teardown continues
func dispatch(ev *event.Event) {
	dispatchLock.Lock()
	defer dispatchLock.Unlock()

	for _, fn := range handlersFor(ev.Kind) {
		fn(ev)
	}
	totalEvents.Increment()
}
