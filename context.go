package authservice

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/authservice/internal/logging"
)

type requestIDContextKey struct{}
type clientIPContextKey struct{}

// WithRequestID attaches a request identifier to ctx. Engine log lines
// written with ctx carry it as request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDContextKey{}, id)
	return logging.ContextWith(ctx, slog.String("request_id", id))
}

// WithClientIP attaches the caller's IP address to ctx. Engine log lines
// written with ctx carry it as client_ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	ctx = context.WithValue(ctx, clientIPContextKey{}, ip)
	return logging.ContextWith(ctx, slog.String("client_ip", ip))
}

// RequestIDFromContext returns the id set by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// ClientIPFromContext returns the address set by WithClientIP, or "".
func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
