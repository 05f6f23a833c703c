//go:build unit || !integration

package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthorization(t *testing.T) {
	for _, tc := range []struct {
		value     string
		scheme    string
		parameter string
	}{
		{value: "Basic YWRtaW46cHc=", scheme: "Basic", parameter: "YWRtaW46cHc="},
		{value: "basic\tYWRtaW46cHc=", scheme: "basic", parameter: "YWRtaW46cHc="},
		{value: "  Bearer   token  ", scheme: "Bearer", parameter: "token"},
		{value: "Negotiate", scheme: "Negotiate", parameter: ""},
		{value: "Digest a=1, b=2", scheme: "Digest", parameter: "a=1, b=2"},
	} {
		t.Run(tc.value, func(t *testing.T) {
			header, err := ParseAuthorization(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.scheme, header.Scheme)
			assert.Equal(t, tc.parameter, header.Parameter)
		})
	}
}

func TestParseAuthorizationErrors(t *testing.T) {
	for _, value := range []string{"", " \t ", "B@sic x", "(Basic) x", "Basic/1 x"} {
		_, err := ParseAuthorization(value)
		assert.ErrorIs(t, err, ErrMalformedAuthorization, value)
	}
}

func TestIsBasic(t *testing.T) {
	for _, scheme := range []string{"Basic", "basic", "BASIC", "bAsIc"} {
		assert.True(t, AuthorizationHeader{Scheme: scheme}.IsBasic(), scheme)
	}
	for _, scheme := range []string{"Bearer", "Basics", "Bas"} {
		assert.False(t, AuthorizationHeader{Scheme: scheme}.IsBasic(), scheme)
	}
}

func TestDecodeBasicCredentials(t *testing.T) {
	decoded, err := DecodeBasicCredentials("YWRtaW46cHc=")
	require.NoError(t, err)
	assert.Equal(t, "admin:pw", decoded)

	// 0xE9 is é in ISO-8859-1
	decoded, err = DecodeBasicCredentials("6TrpOg==")
	require.NoError(t, err)
	assert.Equal(t, "é:é:", decoded)

	_, err = DecodeBasicCredentials("!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEncodeBasicCredentials(t *testing.T) {
	header, err := EncodeBasicCredentials("alice:secret")
	require.NoError(t, err)
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", header)

	header, err = EncodeBasicCredentials("é:é:")
	require.NoError(t, err)
	assert.Equal(t, "Basic 6TrpOg==", header)

	_, err = EncodeBasicCredentials("user:日本")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
