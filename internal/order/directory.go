package order

import "context"

// RecyclerDirectory resolves where a recycler's notifications go. Checkout
// requests are unauthenticated, so when a directory is configured the
// address in the request is ignored.
type RecyclerDirectory interface {
	RecyclerEmail(ctx context.Context, recyclerID string) (string, bool)
}

// StaticRecyclerDirectory is a fixed id -> email map, loaded from config.
type StaticRecyclerDirectory map[string]string

func (d StaticRecyclerDirectory) RecyclerEmail(_ context.Context, recyclerID string) (string, bool) {
	email, ok := d[recyclerID]
	return email, ok && email != ""
}
