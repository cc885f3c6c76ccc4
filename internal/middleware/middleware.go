package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/handlers"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type authSettings struct {
	token  string
	bypass bool
}

var auth authSettings

// Init sets the bearer token the protected routes expect.
func Init(cfg config.ServerConfig) {
	auth = authSettings{token: cfg.AuthToken, bypass: cfg.NoAuthBypass}
}

var ChatHandler = Wrap(handlers.ChatHandler)
var PersonasHandler = Wrap(handlers.PersonasHandler)
var TraditionsHandler = Wrap(handlers.TraditionsHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)
var HealthHandler = WrapPublic(handlers.HealthHandler)

// Wrap runs the full chain: trace, rate limit, bearer auth, identity.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, injectTrace, rateLimiter, authenticate, resolveIdentity)
}

// WrapPublic skips authentication.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, injectTrace)
}

func chain(next http.HandlerFunc, steps ...func(requestResponseStruct) requestResponseStruct) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
		}()

		re := requestResponseStruct{req: r, writer: rec, logger: logger_i.NewLogger("middleware")}
		for _, step := range steps {
			re = step(re)
			if re.badRequest.isBadRequest {
				handleBadRequest(re)
				return
			}
		}
		re.logger.Debug("request accepted", "method", r.Method, "path", r.URL.Path)
		next(rec, re.req)
	}
}
