package gate

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Keys of the gate settings in the configuration store.
const (
	KeyEnabled         = "TestUsersModule.Enabled"
	KeyIPAllowList     = "TestUsersModule.Whitelist.IP"
	KeyUserAllowList   = "TestUsersModule.Whitelist.Users"
	KeyDomainBlockList = "TestUsersModule.Blacklist.Domains"

	listSeparator = "|"
)

// Source is the key/value store gate settings are read from. Values are raw
// strings; interpreting them is the job of LoadConfig.
type Source interface {
	// Lookup returns the value stored under key and whether the key is set at all.
	Lookup(key string) (string, bool)
}

// MapSource is a Source backed by a plain map.
type MapSource map[string]string

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// stringSet is a literal-match set. A nil stringSet means the list was not
// configured, which is different from a configured but empty list.
type stringSet map[string]struct{}

func newStringSet(items []string) stringSet {
	s := make(stringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s stringSet) items() []string {
	return lo.Keys(s)
}

// Config holds the gate settings. It is built once at startup and only read
// afterwards, so it is safe to share between concurrent requests.
type Config struct {
	enabled         bool
	ipAllowList     stringSet
	userAllowList   stringSet
	domainBlockList stringSet
}

type Option func(*Config)

// WithEnabled turns the gate on or off.
func WithEnabled(enabled bool) Option {
	return func(c *Config) {
		c.enabled = enabled
	}
}

// WithIPAllowList configures the IP allow-list. Calling it with no addresses
// configures an empty list.
func WithIPAllowList(addresses ...string) Option {
	return func(c *Config) {
		c.ipAllowList = newStringSet(addresses)
	}
}

// WithUserAllowList configures the "username:password" allow-list used for
// Basic authentication.
func WithUserAllowList(credentials ...string) Option {
	return func(c *Config) {
		c.userAllowList = newStringSet(credentials)
	}
}

// WithDomainBlockList configures the hosts the gate applies to.
func WithDomainBlockList(hosts ...string) Option {
	return func(c *Config) {
		c.domainBlockList = newStringSet(hosts)
	}
}

// NewConfig returns an enabled config with no lists configured, modified by opts.
func NewConfig(opts ...Option) *Config {
	c := &Config{enabled: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadConfig reads the gate settings from src. A missing or unparsable
// enabled flag leaves the gate on. Lists are not read when the gate is off.
func LoadConfig(src Source) *Config {
	c := &Config{enabled: true}
	if v, ok := src.Lookup(KeyEnabled); ok {
		if enabled, valid := parseBool(v); valid {
			c.enabled = enabled
		}
	}
	if !c.enabled {
		return c
	}

	c.ipAllowList = lookupList(src, KeyIPAllowList)
	c.userAllowList = lookupList(src, KeyUserAllowList)
	c.domainBlockList = lookupList(src, KeyDomainBlockList)
	return c
}

func lookupList(src Source, key string) stringSet {
	v, ok := src.Lookup(key)
	if !ok {
		return nil
	}
	return newStringSet(splitList(v))
}

// splitList splits on the list separator and drops empty segments. Segments
// are otherwise kept verbatim.
func splitList(v string) []string {
	return lo.Compact(strings.Split(v, listSeparator))
}

// parseBool accepts "true" and "false" in any letter case, ignoring
// surrounding whitespace.
func parseBool(v string) (value bool, ok bool) {
	v = strings.TrimSpace(v)
	switch {
	case strings.EqualFold(v, "true"):
		return true, true
	case strings.EqualFold(v, "false"):
		return false, true
	default:
		return false, false
	}
}

// Enabled reports whether the gate is active.
func (c *Config) Enabled() bool {
	return c.enabled
}

// IPAllowList returns the configured addresses and whether the list is configured.
func (c *Config) IPAllowList() ([]string, bool) {
	return c.ipAllowList.items(), c.ipAllowList != nil
}

// DomainBlockList returns the configured hosts and whether the list is configured.
func (c *Config) DomainBlockList() ([]string, bool) {
	return c.domainBlockList.items(), c.domainBlockList != nil
}

// HasUserAllowList reports whether credential checking is configured. The
// credentials themselves are not exposed.
func (c *Config) HasUserAllowList() bool {
	return c.userAllowList != nil
}

// MarshalZerologObject logs a summary of the config without credentials.
func (c *Config) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("Enabled", c.enabled)
	if c.ipAllowList != nil {
		e.Int("IPAllowList", len(c.ipAllowList))
	}
	if c.userAllowList != nil {
		e.Int("UserAllowList", len(c.userAllowList))
	}
	if c.domainBlockList != nil {
		e.Strs("DomainBlockList", c.domainBlockList.items())
	}
}
