// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Marketsync Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statusapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/marketsync/marketd/cache"
	"github.com/marketsync/marketd/channel"
	"github.com/marketsync/marketd/fault"
	"github.com/marketsync/marketd/heartbeat"
	"github.com/marketsync/marketd/mode"
	"github.com/marketsync/marketd/reconcile"
	"github.com/marketsync/marketd/session"
	"github.com/marketsync/marketd/store"
)

// readable pools, by their external names
func poolByName(name string) *store.PoolHandle {
	switch name {
	case "accounts":
		return store.Pool.Accounts
	case "balance":
		return store.Pool.Balance
	case "cart":
		return store.Pool.Cart
	case "orders":
		return store.Pool.Orders
	case "favorites":
		return store.Pool.Favorites
	case "locale":
		return store.Pool.Locale
	case "settings":
		return store.Pool.Settings
	default:
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// GET /marketd/status
func statusHandler(w http.ResponseWriter, r *http.Request) {

	reply := struct {
		Mode            string `json:"mode"`
		Connection      string `json:"connection"`
		User            string `json:"user,omitempty"`
		Uptime          string `json:"uptime"`
		TotalEvents     uint64 `json:"total_events"`
		DiscardedEvents uint64 `json:"discarded_events"`
		Reconnects      uint64 `json:"reconnects"`
		Handlers        int    `json:"handlers"`
		EventsApplied   uint64 `json:"events_applied"`
		Heartbeats      uint64 `json:"heartbeats"`
	}{
		Mode:            mode.String(),
		Connection:      channel.State().String(),
		Uptime:          time.Since(globalData.started).Round(time.Second).String(),
		TotalEvents:     channel.TotalEvents(),
		DiscardedEvents: channel.DiscardedEvents(),
		Reconnects:      channel.TotalReconnects(),
		Handlers:        channel.HandlersRegistered(),
		EventsApplied:   reconcile.TotalApplied(),
		Heartbeats:      heartbeat.TotalBeats(),
	}
	if user, err := session.CurrentUser(); nil == err {
		reply.User = user
	}

	writeJSON(w, http.StatusOK, reply)
}

// POST /marketd/session
func loginHandler(w http.ResponseWriter, r *http.Request) {

	request := struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&request); nil != err {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}

	err := session.Login(request.UserID, request.Token)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{"user_id": request.UserID})
	case fault.ErrMissingUserId, fault.ErrMissingBearerToken:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DELETE /marketd/session
func logoutHandler(w http.ResponseWriter, r *http.Request) {
	session.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// GET /marketd/cache/{pool}/{key}
func cacheHandler(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)

	pool := poolByName(vars["pool"])
	if nil == pool {
		http.Error(w, "no such pool", http.StatusNotFound)
		return
	}

	value, updatedAt, err := cache.Get(pool, vars["key"])
	if nil != err {
		http.Error(w, "no such key", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Value     json.RawMessage `json:"value"`
		UpdatedAt time.Time       `json:"updated_at"`
	}{
		Value:     value,
		UpdatedAt: updatedAt,
	})
}
