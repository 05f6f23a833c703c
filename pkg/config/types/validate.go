package types

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

const maxPort = 65535

// ListenAddress is the host:port the server binds to.
func (c ServerConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UpstreamURL parses Upstream. Only absolute http and https URLs are accepted.
func (c ServerConfig) UpstreamURL() (*url.URL, error) {
	if c.Upstream == "" {
		return nil, errors.New("upstream is not set")
	}
	u, err := url.Parse(c.Upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream %q: %w", c.Upstream, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid upstream %q: scheme must be http or https", c.Upstream)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q: missing host", c.Upstream)
	}
	return u, nil
}

// Validate reports every problem with the server settings at once.
func (c ServerConfig) Validate() error {
	var err error
	if c.Port < 0 || c.Port > maxPort {
		err = multierr.Append(err, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, upstreamErr := c.UpstreamURL(); upstreamErr != nil {
		err = multierr.Append(err, upstreamErr)
	}
	for name, d := range map[string]time.Duration{
		"read header timeout": c.ReadHeaderTimeout,
		"read timeout":        c.ReadTimeout,
		"write timeout":       c.WriteTimeout,
		"shutdown timeout":    c.ShutdownTimeout,
	} {
		if d < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative", name))
		}
	}
	for _, path := range c.SkipPaths {
		if !strings.HasPrefix(path, "/") || !doublestar.ValidatePattern(path) {
			err = multierr.Append(err, fmt.Errorf("invalid skip path %q", path))
		}
	}
	return err
}
