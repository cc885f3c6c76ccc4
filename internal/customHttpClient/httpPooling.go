package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/PersonaRAG/internal/config"
)

var (
	once   sync.Once
	shared *http.Client
)

// Client returns the pooled client shared by every outbound provider adapter.
// Per-call deadlines come from the request context.
func Client() *http.Client {
	once.Do(func() {
		shared = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return shared
}
