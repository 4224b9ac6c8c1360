package ledger

import (
	"context"
	"strings"
)

type senderKey struct{}

// WithSender attaches the connected wallet address to ctx.
func WithSender(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, senderKey{}, addr)
}

// SenderFromContext returns the address set by WithSender.
func SenderFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(senderKey{}).(string)
	if !ok || strings.TrimSpace(addr) == "" {
		return "", false
	}
	return addr, true
}

// SenderFunc resolves the identity of the caller for a request.
type SenderFunc func(ctx context.Context) (string, bool)
