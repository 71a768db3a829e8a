package http

import (
	"net"
	"net/http"
	"time"
)

const (
	maxIdleConnsPerHost   = 4
	dialTimeout           = 30 * time.Second
	keepAliveTime         = 5 * time.Minute
	responseHeaderTimeout = 2 * time.Minute
)

// NewClient returns the HTTP client shared by the storage SDKs.
// Requests are issued one at a time, so a handful of idle connections per host is enough.
func NewClient() *http.Client {
	return &http.Client{
		Transport: NewTransport(),
	}
}

// NewTransport clones the default transport with the dialer and timeouts used for storage traffic.
func NewTransport() http.RoundTripper {
	defaultTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	newTransport := defaultTransport.Clone()

	newTransport.MaxIdleConnsPerHost = maxIdleConnsPerHost
	newTransport.ResponseHeaderTimeout = responseHeaderTimeout
	newTransport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAliveTime,
	}).DialContext

	return newTransport
}
