package config

import (
	"strings"
	"sync"
)

// Role selects which database credential new connections use.
type Role string

const (
	RoleDefault Role = "default"
	RoleAdmin   Role = "admin"
	RoleGuest   Role = "guest"
)

// ParseRole maps "admin" (any case) to RoleAdmin; anything else is a guest.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleGuest
}

// Credential is a database user/password pair.
type Credential struct {
	User     string
	Password string
}

// CredentialCell is the process-wide holder of the active credential. Every
// new store connection reads it; open connections are unaffected by a switch.
type CredentialCell struct {
	mu     sync.RWMutex
	role   Role
	active Credential
	admin  Credential
	guest  Credential
}

func NewCredentialCell(initial, admin, guest Credential) *CredentialCell {
	return &CredentialCell{
		role:   RoleDefault,
		active: initial,
		admin:  admin,
		guest:  guest,
	}
}

// Active returns the credential for the next connection attempt.
func (c *CredentialCell) Active() Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Role returns the currently selected role.
func (c *CredentialCell) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// Switch selects the credential for role and returns it.
func (c *CredentialCell) Switch(role Role) Credential {
	c.mu.Lock()
	defer c.mu.Unlock()
	if role == RoleAdmin {
		c.role, c.active = RoleAdmin, c.admin
	} else {
		c.role, c.active = RoleGuest, c.guest
	}
	return c.active
}
