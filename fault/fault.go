// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type AuthenticationError GenericError
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised       = ExistsError("already initialised")
	ErrAuthenticationDenied     = AuthenticationError("authentication denied")
	ErrCacheKeyNotFound         = NotFoundError("cache key not found")
	ErrChannelNotConnected      = ProcessError("channel not connected")
	ErrConnectTimedOut          = ProcessError("connect timed out")
	ErrInvalidConnectionAddress = InvalidError("invalid connection address")
	ErrInvalidIPAddress         = InvalidError("invalid IP Address")
	ErrInvalidInterval          = InvalidError("invalid interval")
	ErrInvalidLoggerChannel     = InvalidError("invalid logger channel")
	ErrInvalidNetwork           = InvalidError("invalid network")
	ErrInvalidPoolPrefix        = InvalidError("invalid pool prefix")
	ErrInvalidPortNumber        = InvalidError("invalid port number")
	ErrInvalidPrivateKey        = InvalidError("invalid private key")
	ErrInvalidPublicKey         = InvalidError("invalid public key")
	ErrInvalidStructPointer     = InvalidError("invalid struct pointer")
	ErrMalformedEventPayload    = InvalidError("malformed event payload")
	ErrMissingBearerToken       = InvalidError("missing bearer token")
	ErrMissingHeartbeatURL      = InvalidError("missing heartbeat url")
	ErrMissingUserId            = InvalidError("missing user id")
	ErrNoCurrentSession         = NotFoundError("no current session")
	ErrNotInitialised           = NotFoundError("not initialised")
	ErrRateLimiting             = ProcessError("rate limiting")
	ErrUnexpectedServerReply    = ProcessError("unexpected server reply")
	ErrUnknownEventName         = InvalidError("unknown event name")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e AuthenticationError) Error() string { return string(e) }
func (e ExistsError) Error() string         { return string(e) }
func (e InvalidError) Error() string        { return string(e) }
func (e NotFoundError) Error() string       { return string(e) }
func (e ProcessError) Error() string        { return string(e) }

// determine the class of an error
func IsErrAuthentication(e error) bool { _, ok := e.(AuthenticationError); return ok }
func IsErrExists(e error) bool         { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool        { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool       { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool        { _, ok := e.(ProcessError); return ok }
