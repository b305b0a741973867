package auth

import (
	"fmt"
	"os"
	"strings"
)

// Config holds OIDC verification settings. An empty Issuer disables token
// verification and identity is read from trusted X-Actor headers instead.
type Config struct {
	Issuer          string `toml:"issuer"`
	ClientID        string `toml:"client_id"`
	NameClaim       string `toml:"name_claim"`
	RoleClaim       string `toml:"role_claim"`
	DepartmentClaim string `toml:"department_claim"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Issuer          string
	ClientID        string
	NameClaim       string
	RoleClaim       string
	DepartmentClaim string
}

// Enabled reports whether OIDC verification is configured.
func (c *Config) Enabled() bool {
	return c.Issuer != ""
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.NameClaim != "" {
		c.NameClaim = overlay.NameClaim
	}
	if overlay.RoleClaim != "" {
		c.RoleClaim = overlay.RoleClaim
	}
	if overlay.DepartmentClaim != "" {
		c.DepartmentClaim = overlay.DepartmentClaim
	}
}

func (c *Config) loadDefaults() {
	if c.NameClaim == "" {
		c.NameClaim = "preferred_username"
	}
	if c.RoleClaim == "" {
		c.RoleClaim = "roles"
	}
	if c.DepartmentClaim == "" {
		c.DepartmentClaim = "department"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, kv := range []struct {
		key string
		dst *string
	}{
		{env.Issuer, &c.Issuer},
		{env.ClientID, &c.ClientID},
		{env.NameClaim, &c.NameClaim},
		{env.RoleClaim, &c.RoleClaim},
		{env.DepartmentClaim, &c.DepartmentClaim},
	} {
		if kv.key == "" {
			continue
		}
		if v := os.Getenv(kv.key); v != "" {
			*kv.dst = v
		}
	}
}

func (c *Config) validate() error {
	if !c.Enabled() {
		return nil
	}
	if !strings.HasPrefix(c.Issuer, "https://") && !strings.HasPrefix(c.Issuer, "http://") {
		return fmt.Errorf("issuer must be an http(s) URL")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when issuer is set")
	}
	return nil
}
