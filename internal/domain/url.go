package domain

import (
	"net/url"
	"strings"
)

// ValidateURL accepts only absolute http(s) URLs with a host.
func ValidateURL(raw string) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return &ValidationError{Field: "url", Value: raw, Reason: "required"}
	}
	u, err := url.Parse(s)
	if err != nil {
		return &ValidationError{Field: "url", Value: raw, Reason: "does not parse"}
	}
	if !u.IsAbs() || u.Host == "" || u.Hostname() == "" {
		return &ValidationError{Field: "url", Value: raw, Reason: "must be absolute"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Value: raw, Reason: "scheme must be http or https"}
	}
	return nil
}

// NormalizeURL lowercases scheme and host, drops default ports and a bare
// trailing slash. Invalid input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}
