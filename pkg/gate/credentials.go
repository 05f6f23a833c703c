package gate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const basicScheme = "basic"

var (
	// ErrMalformedAuthorization is returned when the Authorization header cannot
	// be parsed as "<scheme> [parameter]".
	ErrMalformedAuthorization = errors.New("malformed authorization header")
	// ErrInvalidCredentials is returned when a Basic parameter is not valid base64.
	ErrInvalidCredentials = errors.New("invalid basic credentials")
)

// AuthorizationHeader is a parsed Authorization header value.
type AuthorizationHeader struct {
	Scheme    string
	Parameter string
}

// IsBasic reports whether the scheme is Basic. Scheme names are
// case-insensitive (RFC 2617 section 1.2).
func (h AuthorizationHeader) IsBasic() bool {
	return strings.EqualFold(h.Scheme, basicScheme)
}

// ParseAuthorization splits an Authorization header value into scheme and
// parameter. The parameter may be empty.
func ParseAuthorization(value string) (AuthorizationHeader, error) {
	value = strings.Trim(value, " \t")
	if value == "" {
		return AuthorizationHeader{}, fmt.Errorf("%w: empty value", ErrMalformedAuthorization)
	}

	scheme, parameter := value, ""
	if i := strings.IndexAny(value, " \t"); i != -1 {
		scheme, parameter = value[:i], strings.Trim(value[i+1:], " \t")
	}
	if !isToken(scheme) {
		return AuthorizationHeader{}, fmt.Errorf("%w: invalid scheme %q", ErrMalformedAuthorization, scheme)
	}
	return AuthorizationHeader{Scheme: scheme, Parameter: parameter}, nil
}

// DecodeBasicCredentials decodes a Basic parameter into "username:password".
// The decoded bytes are read as ISO-8859-1, which is how Basic credentials are
// carried regardless of the characters the client typed.
func DecodeBasicCredentials(parameter string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(parameter)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return string(decoded), nil
}

// EncodeBasicCredentials is the inverse of DecodeBasicCredentials and returns
// a complete Authorization header value. Characters outside ISO-8859-1 are
// rejected.
func EncodeBasicCredentials(credentials string) (string, error) {
	raw, err := charmap.ISO8859_1.NewEncoder().String(credentials)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// isToken reports whether s is an RFC 7230 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	default:
		return strings.IndexByte("!#$%&'*+-.^_`|~", ch) != -1
	}
}
