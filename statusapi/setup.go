// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package statusapi - local HTTP control and inspection surface
//
// bound to loopback; lets the desktop shell drive login and logout and
// lets support tooling read the cache and connection state without
// attaching a debugger
package statusapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/ratelimit"
	"github.com/marketsync/marketd/util"
)

// Configuration - listen address for the control API
type Configuration struct {
	Listen string `gluamapper:"listen" json:"listen"`
}

// request throttling
const (
	rateLimit = 50  // requests per second
	rateBurst = 100 // burst size
)

const shutdownTimeout = 5 * time.Second

// globals for this module
type statusapiData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	server  *http.Server
	limiter *rate.Limiter
	started time.Time

	// set once during initialise
	initialised bool
}

// global data
var globalData statusapiData

// Initialise - start the control API listener
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("statusapi")
	globalData.log.Info("starting…")

	listen, err := util.CanonicalIPandPort(configuration.Listen)
	if nil != err {
		return err
	}

	globalData.limiter = rate.NewLimiter(rateLimit, rateBurst)
	globalData.started = time.Now()

	router := newRouter()

	globalData.server = &http.Server{
		Addr:    listen,
		Handler: router,
	}

	go func(server *http.Server, log *logger.L) {
		log.Infof("listening on: %s", server.Addr)
		err := server.ListenAndServe()
		if http.ErrServerClosed != err {
			log.Errorf("listener error: %s", err)
		}
	}(globalData.server, globalData.log)

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop the listener
func Finalise() error {

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	globalData.server.Shutdown(ctx)

	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// build the route table
func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(throttle)

	router.HandleFunc("/marketd/status", statusHandler).Methods("GET")
	router.HandleFunc("/marketd/session", loginHandler).Methods("POST")
	router.HandleFunc("/marketd/session", logoutHandler).Methods("DELETE")
	router.HandleFunc("/marketd/cache/{pool}/{key}", cacheHandler).Methods("GET")

	return router
}

// middleware applying the global request limit
func throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := globalData.limiter
		if nil != limiter {
			if err := ratelimit.Limit(limiter); nil != err {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
