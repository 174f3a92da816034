// Glowclock Core
// Copyright (c) 2026 The Glowclock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glowclock Core.
//
// Glowclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glowclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/GlowclockProject/glowclock-core/pkg/api/methods"
	"github.com/GlowclockProject/glowclock-core/pkg/api/middleware"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models"
	"github.com/GlowclockProject/glowclock-core/pkg/api/models/requests"
	"github.com/GlowclockProject/glowclock-core/pkg/api/validation"
	"github.com/GlowclockProject/glowclock-core/pkg/config"
	"github.com/GlowclockProject/glowclock-core/pkg/database"
	"github.com/GlowclockProject/glowclock-core/pkg/service/state"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

var JSONRPCErrorParseError = models.ErrorObject{
	Code:    -32700,
	Message: "Parse error",
}
var JSONRPCErrorInvalidRequest = models.ErrorObject{
	Code:    -32600,
	Message: "Invalid Request",
}
var JSONRPCErrorMethodNotFound = models.ErrorObject{
	Code:    -32601,
	Message: "Method not found",
}
var JSONRPCErrorInvalidParams = models.ErrorObject{
	Code:    -32602,
	Message: "Invalid params",
}
var JSONRPCErrorInternalError = models.ErrorObject{
	Code:    -32603,
	Message: "Internal error",
}
var JSONRPCErrorServerError = models.ErrorObject{
	Code:    -32000,
	Message: "Server error",
}

// ErrMethodNotFound is returned by handleRequest when a request names a
// method the server does not expose.
var ErrMethodNotFound = errors.New("method not found")

// maxPostBodySize caps JSON-RPC over HTTP POST request bodies.
const maxPostBodySize = 1 << 20

// MethodHandler processes a single API method call.
type MethodHandler func(requests.RequestEnv) (any, error)

// MethodMap is a concurrency-safe registry of API method handlers.
// Method names are case-insensitive.
type MethodMap struct {
	methods map[string]MethodHandler
	mu      sync.RWMutex
}

// NewMethodMap creates an empty method registry.
func NewMethodMap() *MethodMap {
	return &MethodMap{methods: make(map[string]MethodHandler)}
}

// AddMethod registers a handler under the given method name.
func (m *MethodMap) AddMethod(name string, handler MethodHandler) error {
	name = strings.ToLower(name)
	if name == "" {
		return errors.New("method name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("method %s: handler cannot be nil", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.methods[name]; exists {
		return fmt.Errorf("method already registered: %s", name)
	}
	m.methods[name] = handler
	return nil
}

// GetMethod looks up the handler for a method name.
func (m *MethodMap) GetMethod(name string) (MethodHandler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.methods[strings.ToLower(name)]
	return fn, ok
}

// DefaultMethodMap returns a registry populated with every method the
// server exposes.
func DefaultMethodMap() *MethodMap {
	m := NewMethodMap()
	handlers := map[string]MethodHandler{
		models.MethodVersion:        methods.HandleVersion,
		models.MethodStatus:         methods.HandleStatus,
		models.MethodStateGet:       methods.HandleStateGet,
		models.MethodStateSet:       methods.HandleStateSet,
		models.MethodHistoryRead:    methods.HandleHistoryRead,
		models.MethodSettingsGet:    methods.HandleSettings,
		models.MethodSettingsSet:    methods.HandleSettingsUpdate,
		models.MethodSettingsReload: methods.HandleSettingsReload,
		models.MethodWeatherGet:     methods.HandleWeatherGet,
	}
	for name, fn := range handlers {
		if err := m.AddMethod(name, fn); err != nil {
			log.Error().Err(err).Str("method", name).Msg("registering API method")
		}
	}
	return m
}

func handleRequest(methodMap *MethodMap, env requests.RequestEnv, req models.RequestObject) (any, error) {
	log.Debug().Interface("request", req).Msg("received request")

	fn, ok := methodMap.GetMethod(req.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, req.Method)
	}

	if req.ID == nil {
		return nil, fmt.Errorf("missing ID for request: %s", req.Method)
	}

	env.ID = *req.ID
	env.Params = req.Params

	return fn(env)
}

// errorObjectFor maps a handler error to a JSON-RPC error object. Parameter
// problems become InvalidParams and carry the handler's message; anything
// else is a server error.
func errorObjectFor(err error) models.ErrorObject {
	var valErr *validation.Error
	switch {
	case errors.Is(err, ErrMethodNotFound):
		return JSONRPCErrorMethodNotFound
	case errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams),
		errors.As(err, &valErr):
		return models.ErrorObject{
			Code:    JSONRPCErrorInvalidParams.Code,
			Message: err.Error(),
		}
	default:
		return models.ErrorObject{
			Code:    JSONRPCErrorServerError.Code,
			Message: err.Error(),
		}
	}
}

func sendResponse(session *melody.Session, id models.RPCID, result any) error {
	log.Debug().Interface("result", result).Msg("sending response")

	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}

	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}

func sendError(session *melody.Session, id models.RPCID, errObj models.ErrorObject) error {
	log.Debug().Int("code", errObj.Code).Str("message", errObj.Message).Msg("sending error")

	resp := models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling error response: %w", err)
	}

	if err := session.Write(data); err != nil {
		return fmt.Errorf("error writing error response: %w", err)
	}
	return nil
}

// handleResponse is called for response objects arriving from clients.
// The server never sends requests expecting a reply, so these are only
// logged.
func handleResponse(resp models.ResponseObject) {
	log.Debug().Interface("response", resp).Msg("received response")
}

func broadcastNotifications(
	st *state.State,
	session *melody.Melody,
	notifications <-chan models.Notification,
) {
	for {
		select {
		case <-st.GetContext().Done():
			log.Debug().Msg("stopping notification broadcaster via context cancellation")
			return
		case notif, ok := <-notifications:
			if !ok {
				log.Debug().Msg("stopping notification broadcaster, source channel closed")
				return
			}
			req := models.RequestObject{
				JSONRPC: "2.0",
				Method:  notif.Method,
				Params:  notif.Params,
			}

			data, err := json.Marshal(req)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification request")
				continue
			}

			if err := session.Broadcast(data); err != nil {
				log.Error().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

func handleWSMessage(
	methodMap *MethodMap,
	cfg *config.Instance,
	st *state.State,
	db *database.Database,
	wx requests.ForecastSource,
) func(session *melody.Session, msg []byte) {
	return func(session *melody.Session, msg []byte) {
		// ping command for heartbeat operation
		if bytes.Equal(msg, []byte("ping")) {
			if err := session.Write([]byte("pong")); err != nil {
				log.Error().Err(err).Msg("sending pong")
			}
			return
		}

		if !json.Valid(msg) {
			log.Error().Msg("data not valid json")
			if err := sendError(session, models.NullRPCID, JSONRPCErrorParseError); err != nil {
				log.Error().Err(err).Msg("error sending error response")
			}
			return
		}

		// try parse a request first, which has a method field
		var req models.RequestObject
		err := json.Unmarshal(msg, &req)

		if err == nil && req.JSONRPC != "2.0" {
			log.Error().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
			id := models.NullRPCID
			if req.ID != nil {
				id = *req.ID
			}
			if sendErr := sendError(session, id, JSONRPCErrorInvalidRequest); sendErr != nil {
				log.Error().Err(sendErr).Msg("error sending error response")
			}
			return
		}

		if err == nil && req.Method != "" {
			if req.ID == nil {
				// request is notification
				log.Info().Interface("req", req).Msg("received notification, ignoring")
				return
			}

			env := requests.RequestEnv{
				Config:   cfg,
				State:    st,
				Database: db,
				Weather:  wx,
				IsLocal:  middleware.IsLoopbackAddr(session.Request.RemoteAddr),
			}

			resp, handleErr := handleRequest(methodMap, env, req)
			if handleErr != nil {
				if sendErr := sendError(session, *req.ID, errorObjectFor(handleErr)); sendErr != nil {
					log.Error().Err(sendErr).Msg("error sending error response")
				}
				return
			}

			if sendErr := sendResponse(session, *req.ID, resp); sendErr != nil {
				log.Error().Err(sendErr).Msg("error sending response")
			}
			return
		}

		// otherwise try parse a response, which has an id field
		var resp models.ResponseObject
		if err := json.Unmarshal(msg, &resp); err == nil && !resp.ID.IsAbsent() {
			handleResponse(resp)
			return
		}

		log.Error().Err(err).Msg("message does not match known types")
		if err := sendError(session, models.NullRPCID, JSONRPCErrorInvalidRequest); err != nil {
			log.Error().Err(err).Msg("error sending error response")
		}
	}
}

// writePostResponse writes a JSON-RPC response body. JSON-RPC errors still
// ride on HTTP 200; the error lives in the body.
func writePostResponse(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("writing POST response")
	}
}

func writePostError(w http.ResponseWriter, id models.RPCID, errObj models.ErrorObject) {
	writePostResponse(w, models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &errObj,
	})
}

// handlePostRequest serves single JSON-RPC requests over plain HTTP POST,
// for clients that don't want to hold a WebSocket open. Requests without
// an id are accepted and discarded, per spec no response body is sent.
func handlePostRequest(
	methodMap *MethodMap,
	cfg *config.Instance,
	st *state.State,
	db *database.Database,
	wx requests.ForecastSource,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "application/json") {
			http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPostBodySize))
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			log.Error().Err(err).Msg("reading POST body")
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		if !json.Valid(body) {
			writePostError(w, models.NullRPCID, JSONRPCErrorParseError)
			return
		}

		var req models.RequestObject
		if err := json.Unmarshal(body, &req); err != nil || req.Method == "" {
			writePostError(w, models.NullRPCID, JSONRPCErrorInvalidRequest)
			return
		}

		if req.JSONRPC != "2.0" {
			id := models.NullRPCID
			if req.ID != nil {
				id = *req.ID
			}
			writePostError(w, id, JSONRPCErrorInvalidRequest)
			return
		}

		if req.ID == nil {
			// notification, server must not reply
			log.Info().Str("method", req.Method).Msg("received notification over POST, ignoring")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		env := requests.RequestEnv{
			Config:   cfg,
			State:    st,
			Database: db,
			Weather:  wx,
			IsLocal:  middleware.IsLoopbackAddr(r.RemoteAddr),
		}

		result, handleErr := handleRequest(methodMap, env, req)
		if handleErr != nil {
			writePostError(w, *req.ID, errorObjectFor(handleErr))
			return
		}

		writePostResponse(w, models.ResponseObject{
			JSONRPC: "2.0",
			ID:      *req.ID,
			Result:  result,
		})
	}
}

// privateNetworkAccessMiddleware answers Private Network Access preflights
// so browsers on public pages may reach the device on the local network.
// See https://wicg.github.io/private-network-access/
func privateNetworkAccessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions &&
			r.Header.Get("Access-Control-Request-Private-Network") == "true" {
			w.Header().Set("Access-Control-Allow-Private-Network", "true")
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the API server. The listener is bound before Start returns,
// so a nil error means the server is accepting connections. The server
// shuts down when the service context is cancelled.
func Start(
	cfg *config.Instance,
	st *state.State,
	db *database.Database,
	wx requests.ForecastSource,
	notifications <-chan models.Notification,
) error {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.NoCache)
	r.Use(chimiddleware.Timeout(config.APIRequestTimeout))
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(cfg.AllowedIPs())))
	r.Use(privateNetworkAccessMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*", "capacitor://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{},
	}))

	limiter := middleware.NewIPRateLimiter()
	limiter.StartCleanup(st.GetContext())
	r.Use(middleware.HTTPRateLimitMiddleware(limiter))

	methodMap := DefaultMethodMap()

	session := melody.New()
	session.Upgrader.CheckOrigin = func(_ *http.Request) bool { return true }
	go broadcastNotifications(st, session, notifications)

	session.HandleMessage(middleware.WebSocketRateLimitHandler(
		limiter,
		handleWSMessage(methodMap, cfg, st, db, wx),
	))

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := session.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request: latest")
		}
	})
	r.Get("/api/v0", func(w http.ResponseWriter, r *http.Request) {
		if err := session.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request: v0")
		}
	})

	r.Post("/api", handlePostRequest(methodMap, cfg, st, db, wx))
	r.Post("/api/v0", handlePostRequest(methodMap, cfg, st, db, wx))

	listener, err := net.Listen("tcp", cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.APIListen(), err)
	}

	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: config.APIRequestTimeout,
	}

	go func() {
		<-st.GetContext().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := session.Close(); err != nil {
			log.Error().Err(err).Msg("closing websocket sessions")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutting down API server")
		}
	}()

	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("API server listening")
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error().Err(serveErr).Msg("API server stopped unexpectedly")
		}
	}()

	return nil
}
