// Package httpserver builds the http.Server that fronts the ledger API.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given address and handler. The read-header
// timeout bounds slow clients before they tie up a connection; request
// bodies are already capped by the transport's decode helper.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
