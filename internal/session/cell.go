package session

import (
	"context"
	"log"
)

// Cell binds one session and key of a Store for the lifetime of a request.
// It satisfies sidebar.StorageCell. Store errors are logged and read as
// "no value".
type Cell struct {
	ctx       context.Context
	store     Store
	sessionID string
	key       string
}

// Bind returns the cell for sessionID and key.
func Bind(ctx context.Context, store Store, sessionID, key string) *Cell {
	return &Cell{ctx: ctx, store: store, sessionID: sessionID, key: key}
}

// Take returns and clears the stored value.
func (c *Cell) Take() (int, bool) {
	v, ok, err := c.store.Take(c.ctx, c.sessionID, c.key)
	if err != nil {
		log.Printf("[Session] take %s: %v", c.key, err)
		return 0, false
	}
	return v, ok
}

// Put stores a value.
func (c *Cell) Put(v int) {
	if err := c.store.Put(c.ctx, c.sessionID, c.key, v); err != nil {
		log.Printf("[Session] put %s: %v", c.key, err)
	}
}
