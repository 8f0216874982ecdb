package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. WriteTimeout
// must outlast the longest decision wait, so it is derived from it.
func New(addr string, handler http.Handler, decisionWait time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      decisionWait + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
