// Package httpserver builds the API server with timeouts suited to the
// matching endpoints; bulk assignment is the slowest operation and bounds the
// write timeout.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server ready for ListenAndServe.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
