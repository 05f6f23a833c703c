package gate

import (
	"net"
	"strings"
)

// HostNameType classifies the host a request was addressed to.
type HostNameType int

const (
	HostNameUnknown HostNameType = iota
	HostNameBasic
	HostNameDNS
	HostNameIPv4
	HostNameIPv6
)

func (t HostNameType) String() string {
	switch t {
	case HostNameBasic:
		return "basic"
	case HostNameDNS:
		return "dns"
	case HostNameIPv4:
		return "ipv4"
	case HostNameIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

const (
	maxDNSNameLength  = 255
	maxDNSLabelLength = 63
)

// ClassifyHost reports what kind of host name host is. host must not carry a
// port; IPv6 literals are expected in brackets.
func ClassifyHost(host string) HostNameType {
	if host == "" {
		return HostNameUnknown
	}
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return HostNameUnknown
		}
		if ip := net.ParseIP(host[1 : len(host)-1]); ip != nil && strings.Contains(host, ":") {
			return HostNameIPv6
		}
		return HostNameUnknown
	}
	if ip := net.ParseIP(host); ip != nil {
		if strings.Contains(host, ":") {
			return HostNameIPv6
		}
		return HostNameIPv4
	}
	if isDNSName(host) {
		return HostNameDNS
	}
	return HostNameBasic
}

// HostFromHostport strips the port from a Host header value and lower-cases
// it, keeping the brackets of an IPv6 literal.
func HostFromHostport(hostport string) string {
	host := hostport
	if strings.HasPrefix(hostport, "[") {
		if end := strings.IndexByte(hostport, ']'); end != -1 {
			host = hostport[:end+1]
		}
	} else if strings.Count(hostport, ":") == 1 {
		host = hostport[:strings.IndexByte(hostport, ':')]
	}
	return strings.ToLower(host)
}

func isDNSName(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > maxDNSNameLength {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if !isDNSLabel(label) {
			return false
		}
	}
	return true
}

func isDNSLabel(label string) bool {
	if label == "" || len(label) > maxDNSLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		ch := label[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_':
		case ch >= 0x80: // internationalized names
		default:
			return false
		}
	}
	return true
}
