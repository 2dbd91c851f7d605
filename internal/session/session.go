// Package session holds the identity of the signed-in user for the
// lifetime of the process.
package session

import (
	"sync"

	"ammonit/internal/model"
)

// Context is the current-user slot shared by views.
type Context struct {
	mu   sync.RWMutex
	user *model.User
}

// New returns an empty session.
func New() *Context {
	return &Context{}
}

// Set records u as the signed-in user.
func (c *Context) Set(u model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &u
}

// Clear forgets the signed-in user.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}

// Current returns the signed-in user, if any.
func (c *Context) Current() (model.User, bool) {
	if c == nil {
		return model.User{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return model.User{}, false
	}
	return *c.user, true
}

// IsCurrent reports whether id belongs to the signed-in user.
func (c *Context) IsCurrent(id string) bool {
	u, ok := c.Current()
	return ok && u.ID == id
}
