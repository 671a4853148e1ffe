package httpapi

import (
	"net/http"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/internal/logging"
	"github.com/MrEthical07/authservice/middleware"
)

// Options configures NewRouter. Zero values are usable.
type Options struct {
	Logger logging.Logger
	// Metrics is mounted at GET /metrics when set.
	Metrics http.Handler
}

// NewRouter wires every route onto a ServeMux wrapped in the request
// context middleware.
func NewRouter(engine *authservice.Engine, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}

	h := &handlers{engine: engine, cookie: engine.Config().Cookie}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /verify-2fa", h.verify2FA)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /verify-token", h.verifyToken)
	mux.Handle("GET /session", middleware.Guard(engine)(http.HandlerFunc(h.session)))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return requestContext(opts.Logger, mux)
}
