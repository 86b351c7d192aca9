// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqchan

import (
	"crypto/rand"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/util"
)

// expected CURVE key sizes
const (
	publicKeySize  = 32
	privateKeySize = 32
	identifierSize = 32
)

// Client - structure to hold a client connection
type Client struct {
	publicKey       []byte
	privateKey      []byte
	serverPublicKey []byte
	address         string
	socketType      zmq.Type
	socket          *zmq.Socket
	poller          *Poller
	events          zmq.State
	timeout         time.Duration
	timestamp       time.Time
}

// NewClient - create a client socket, usually of type zmq.DEALER or zmq.SUB
func NewClient(socketType zmq.Type, privateKey []byte, publicKey []byte, timeout time.Duration) (*Client, error) {

	if len(publicKey) != publicKeySize {
		return nil, fault.ErrInvalidPublicKey
	}
	if len(privateKey) != privateKeySize {
		return nil, fault.ErrInvalidPrivateKey
	}

	client := &Client{
		publicKey:       make([]byte, publicKeySize),
		privateKey:      make([]byte, privateKeySize),
		serverPublicKey: make([]byte, publicKeySize),
		address:         "",
		socketType:      socketType,
		socket:          nil,
		poller:          nil,
		events:          0,
		timeout:         timeout,
		timestamp:       time.Now(),
	}
	copy(client.privateKey, privateKey)
	copy(client.publicKey, publicKey)
	return client, nil
}

// create a socket and connect to the current address
func (client *Client) openSocket() error {

	socket, err := zmq.NewSocket(client.socketType)
	if nil != err {
		return err
	}

	// create a secure random identifier
	randomIdBytes := make([]byte, identifierSize)
	_, err = rand.Read(randomIdBytes)
	if nil != err {
		socket.Close()
		return err
	}
	randomIdentifier := string(randomIdBytes)

	// set up as CURVE client
	err = socket.SetCurveServer(0)
	if nil != err {
		goto failure
	}
	err = socket.SetCurvePublickey(string(client.publicKey))
	if nil != err {
		goto failure
	}
	err = socket.SetCurveSecretkey(string(client.privateKey))
	if nil != err {
		goto failure
	}

	// local identity is a random value
	err = socket.SetIdentity(randomIdentifier)
	if nil != err {
		goto failure
	}

	// destination identity is its public key
	err = socket.SetCurveServerkey(string(client.serverPublicKey))
	if nil != err {
		goto failure
	}

	// zero => do not set timeout
	if 0 != client.timeout {
		err = socket.SetSndtimeo(client.timeout)
		if nil != err {
			goto failure
		}
		err = socket.SetRcvtimeo(client.timeout)
		if nil != err {
			goto failure
		}
	}
	err = socket.SetLinger(0)
	if nil != err {
		goto failure
	}

	// transport level liveness, needs zmq 4.2
	err = socket.SetHeartbeatIvl(heartbeatInterval)
	if nil != err && zmq.ErrorNotImplemented42 != err {
		goto failure
	}
	err = socket.SetHeartbeatTimeout(heartbeatTimeout)
	if nil != err && zmq.ErrorNotImplemented42 != err {
		goto failure
	}
	err = socket.SetHeartbeatTtl(heartbeatTTL)
	if nil != err && zmq.ErrorNotImplemented42 != err {
		goto failure
	}

	// new connection
	err = socket.Connect(client.address)
	if nil != err {
		goto failure
	}

	client.socket = socket

	// add to poller
	if nil != client.poller {
		client.poller.Add(client.socket, client.events)
	}
	return nil
failure:
	socket.Close()
	return err
}

// destroy the socket, but leave other connection info so the same
// endpoint can be reconnected later
func (client *Client) closeSocket() error {

	if nil == client.socket {
		return nil
	}

	// stop any polling
	if nil != client.poller {
		client.poller.Remove(client.socket)
	}

	// if already connected, disconnect first
	if "" != client.address {
		client.socket.Disconnect(client.address)
	}

	// close socket
	err := client.socket.Close()
	client.socket = nil
	return err
}

// Connect - disconnect any old address and connect to a new one
//
// the address is a plain "host:port"; the server public key selects
// and authenticates the remote end at the transport level
func (client *Client) Connect(hostPort string, serverPublicKey []byte) error {

	if len(serverPublicKey) != publicKeySize {
		return fault.ErrInvalidPublicKey
	}

	// if already connected, disconnect first
	err := client.closeSocket()
	if nil != err {
		return err
	}
	client.address = ""

	// small delay to allow any background socket closing
	// and to restrict rate of reconnection
	time.Sleep(5 * time.Millisecond)

	copy(client.serverPublicKey, serverPublicKey)

	address, err := util.CanonicalIPandPort(hostPort)
	if nil != err {
		return err
	}
	client.address = "tcp://" + address

	client.timestamp = time.Now()

	return client.openSocket()
}

// IsConnected - check if the socket is open
func (client *Client) IsConnected() bool {
	return "" != client.address && nil != client.socket
}

// Age - time since the connection was opened
func (client *Client) Age() time.Duration {
	return time.Since(client.timestamp)
}

// Reconnect - close and reopen the connection
func (client *Client) Reconnect() error {

	err := client.closeSocket()
	if nil != err {
		return err
	}
	client.timestamp = time.Now()
	return client.openSocket()
}

// Close - disconnect and close, the client cannot be reused until the
// next Connect
func (client *Client) Close() error {
	return client.closeSocket()
}

// Send - send a multipart message
func (client *Client) Send(items ...interface{}) error {
	if nil == client.socket {
		return fault.ErrChannelNotConnected
	}

	last := len(items) - 1
	for i, item := range items {

		flag := zmq.SNDMORE
		if i == last {
			flag = 0
		}
		switch it := item.(type) {
		case string:
			_, err := client.socket.Send(it, flag)
			if nil != err {
				return err
			}
		case []byte:
			_, err := client.socket.SendBytes(it, flag)
			if nil != err {
				return err
			}
		}
	}
	return nil
}

// Receive - receive a multipart message
func (client *Client) Receive(flags zmq.Flag) ([][]byte, error) {
	if nil == client.socket {
		return nil, fault.ErrChannelNotConnected
	}
	data, err := client.socket.RecvMessageBytes(flags)
	return data, err
}

// BeginPolling - attach the client to a poller
//
// the socket is re-added automatically after every reconnect
func (client *Client) BeginPolling(poller *Poller, events zmq.State) *zmq.Socket {

	// if poller changed
	if nil != client.poller && nil != client.socket {
		client.poller.Remove(client.socket)
	}

	// add to new poller
	client.poller = poller
	client.events = events
	if nil != client.socket {
		poller.Add(client.socket, events)
	}
	return client.socket
}

// IsSocket - check if a polled socket belongs to this client
func (client *Client) IsSocket(socket *zmq.Socket) bool {
	return nil != client.socket && client.socket == socket
}

// String - the connection address
func (client *Client) String() string {
	return client.address
}
