package gate

import (
	"net"
	"net/http"
	"strings"
)

const headerAuthorization = "Authorization"

// RequestDescriptor is the part of an inbound request the gate looks at.
type RequestDescriptor struct {
	// ClientAddress is the literal remote address without port. It is not
	// resolved and not taken from proxy headers.
	ClientAddress string
	// Host is the requested host, lower-cased and without port.
	Host     string
	HostType HostNameType
	// Authorization is the raw Authorization header value. HasAuthorization
	// tells an absent header apart from an empty one.
	Authorization    string
	HasAuthorization bool
}

// DescribeRequest builds the descriptor for r.
func DescribeRequest(r *http.Request) RequestDescriptor {
	hostport := r.Host
	if hostport == "" && r.URL != nil {
		hostport = r.URL.Host
	}
	host := HostFromHostport(hostport)

	desc := RequestDescriptor{
		ClientAddress: clientAddress(r.RemoteAddr),
		Host:          host,
		HostType:      ClassifyHost(host),
	}
	if values, ok := r.Header[headerAuthorization]; ok && len(values) > 0 {
		desc.Authorization = strings.Join(values, ",")
		desc.HasAuthorization = true
	}
	return desc
}

func clientAddress(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
