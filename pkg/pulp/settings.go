package pulp

import (
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultHost       = "localhost"
	DefaultPort       = 443
	DefaultPathPrefix = "/pulp/api"
	DefaultUser       = "admin"
	DefaultPassword   = "admin"
	DefaultTimeout    = 30 * time.Second
)

// Settings addresses the server and carries the static credential pair.
type Settings struct {
	Host       string
	Port       int
	PathPrefix string
	User       string
	Password   string
	Timeout    time.Duration
	// InsecureSkipVerify disables certificate checks for self-signed servers.
	InsecureSkipVerify bool
}

// DefaultSettings returns the settings used when nothing is overridden.
func DefaultSettings() Settings {
	return Settings{
		Host:       DefaultHost,
		Port:       DefaultPort,
		PathPrefix: DefaultPathPrefix,
		User:       DefaultUser,
		Password:   DefaultPassword,
		Timeout:    DefaultTimeout,
	}
}

func normalizeSettings(s Settings) Settings {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port <= 0 {
		s.Port = DefaultPort
	}
	s.PathPrefix = strings.TrimRight(strings.TrimSpace(s.PathPrefix), "/")
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}

// BaseURL is the scheme and authority every request is sent to.
func (s Settings) BaseURL() string {
	return "https://" + net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// AuthHeader returns the Basic authorization header value for the credentials.
func (s Settings) AuthHeader() string {
	raw := s.User + ":" + s.Password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// String omits the password so settings are safe to log.
func (s Settings) String() string {
	return fmt.Sprintf("%s%s (user %s)", s.BaseURL(), s.PathPrefix, s.User)
}
