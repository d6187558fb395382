package head

import (
	"strings"
	"testing"

	"github.com/indigo-web/h1head/http/method"
	"github.com/indigo-web/h1head/http/proto"
	"github.com/indigo-web/h1head/http/status"
	"github.com/indigo-web/h1head/kv"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	t.Run("simple GET", func(t *testing.T) {
		request, err := ParseRequest([]byte("GET / HTTP/1.1\r\n\r\n"), 10)
		require.NoError(t, err)
		require.Equal(t, "GET", request.Method)
		require.Equal(t, method.GET, request.MethodKind())
		require.Equal(t, "/", request.URI)
		require.Equal(t, proto.HTTP11, request.Protocol)
		require.True(t, request.Headers.Empty())
	})

	t.Run("headers keep order, casing and duplicates", func(t *testing.T) {
		raw := "POST /upload?x=1 HTTP/1.0\r\n" +
			"Host: example.com\r\n" +
			"accept-ENCODING: gzip\r\n" +
			"Accept-Encoding:deflate\r\n" +
			"X-Empty:\r\n" +
			"X-Padded: \t value with spaces \t\r\n\r\n"

		request, err := ParseRequest([]byte(raw), 10)
		require.NoError(t, err)
		require.Equal(t, proto.HTTP10, request.Protocol)
		require.Equal(t, "/upload?x=1", request.URI)
		require.Equal(t, []kv.Pair{
			{"Host", "example.com"},
			{"accept-ENCODING", "gzip"},
			{"Accept-Encoding", "deflate"},
			{"X-Empty", ""},
			{"X-Padded", "value with spaces"},
		}, request.Headers.Expose())
		require.Equal(t, "gzip", request.Headers.Value("Accept-Encoding"))
	})

	t.Run("extension method", func(t *testing.T) {
		request, err := ParseRequest([]byte("PROPFIND /dav HTTP/1.1\r\n\r\n"), 10)
		require.NoError(t, err)
		require.Equal(t, "PROPFIND", request.Method)
		require.Equal(t, method.Unknown, request.MethodKind())
	})

	t.Run("request target forms", func(t *testing.T) {
		for _, target := range []string{
			"/", "/a/b%20c?d=e&f", "*", "http://example.com/path?q", "example.com:443", "[::1]:8080",
		} {
			request, err := ParseRequest([]byte("OPTIONS "+target+" HTTP/1.1\r\n\r\n"), 10)
			require.NoError(t, err, target)
			require.Equal(t, target, request.URI)
		}
	})

	t.Run("the result doesn't reference the buffer", func(t *testing.T) {
		buf := []byte("GET /path HTTP/1.1\r\nHost: x\r\n\r\n")
		request, err := ParseRequest(buf, 10)
		require.NoError(t, err)
		copy(buf, strings.Repeat("z", len(buf)))
		require.Equal(t, "/path", request.URI)
		require.Equal(t, "x", request.Headers.Value("host"))
	})
}

func TestParseRequest_Errors(t *testing.T) {
	tcs := []struct {
		Name string
		Raw  string
		Err  error
	}{
		{"no terminator", "GET / HTTP/1.1\r\n", ErrMalformedHead},
		{"empty start line", "\r\n\r\n", ErrMalformedHead},
		{"missing target", "GET\r\n\r\n", ErrMalformedHead},
		{"missing version", "GET /\r\n\r\n", ErrMalformedHead},
		{"empty method", " / HTTP/1.1\r\n\r\n", ErrInvalidMethod},
		{"method with separator", "GE(T / HTTP/1.1\r\n\r\n", ErrInvalidMethod},
		{"empty target", "GET  HTTP/1.1\r\n\r\n", ErrInvalidURI},
		{"target with control char", "GET /\x01 HTTP/1.1\r\n\r\n", ErrInvalidURI},
		{"target with non-ASCII", "GET /caf\xc3\xa9 HTTP/1.1\r\n\r\n", ErrInvalidURI},
		{"bad escape", "GET /%zz HTTP/1.1\r\n\r\n", ErrInvalidURI},
		{"relative target", "GET path HTTP/1.1\r\n\r\n", ErrInvalidURI},
		{"HTTP/2", "GET / HTTP/2.0\r\n\r\n", ErrUnsupportedVersion},
		{"HTTP/0.9", "GET / HTTP/0.9\r\n\r\n", ErrUnsupportedVersion},
		{"lowercase version", "GET / http/1.1\r\n\r\n", ErrUnsupportedVersion},
		{"trailing space", "GET / HTTP/1.1 \r\n\r\n", ErrUnsupportedVersion},
		{"no colon", "GET / HTTP/1.1\r\nHost\r\n\r\n", ErrMalformedHead},
		{"obsolete line folding", "GET / HTTP/1.1\r\nX-A: a\r\n b\r\n\r\n", ErrMalformedHead},
		{"space before colon", "GET / HTTP/1.1\r\nHost : x\r\n\r\n", ErrInvalidHeaderName},
		{"empty name", "GET / HTTP/1.1\r\n: x\r\n\r\n", ErrInvalidHeaderName},
		{"bare CR in value", "GET / HTTP/1.1\r\nHost: a\rb\r\n\r\n", ErrInvalidHeaderValue},
		{"bare LF in value", "GET / HTTP/1.1\r\nHost: a\nb\r\n\r\n", ErrInvalidHeaderValue},
		{"NUL in value", "GET / HTTP/1.1\r\nHost: a\x00b\r\n\r\n", ErrInvalidHeaderValue},
		{"empty line within fields", "GET / HTTP/1.1\r\nA: b\r\n\r\nC: d\r\n\r\n", ErrMalformedHead},
		{"empty line after bare start line", "GET / HTTP/1.1\r\n\r\n\r\n", ErrMalformedHead},
		{"empty line after fields", "GET / HTTP/1.1\r\nA: b\r\n\r\n\r\n", ErrMalformedHead},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			request, err := ParseRequest([]byte(tc.Raw), 10)
			require.ErrorIs(t, err, tc.Err)
			require.Nil(t, request)
		})
	}
}

func TestParseRequest_TooManyHeaders(t *testing.T) {
	raw := "GET / HTTP/1.1\r\n" + strings.Repeat("X-Header: value\r\n", 5) + "\r\n"

	t.Run("at limit", func(t *testing.T) {
		request, err := ParseRequest([]byte(raw), 5)
		require.NoError(t, err)
		require.Equal(t, 5, request.Headers.Len())
	})

	t.Run("above limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			request, err := ParseRequest([]byte(raw), 4)
			require.ErrorIs(t, err, ErrTooManyHeaders)
			require.Nil(t, request, "fields must never be truncated")
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		_, err := ParseRequest([]byte(raw), 0)
		require.ErrorIs(t, err, ErrTooManyHeaders)

		_, err = ParseRequest([]byte("GET / HTTP/1.1\r\n\r\n"), 0)
		require.NoError(t, err)
	})

	t.Run("negative limit", func(t *testing.T) {
		request, err := ParseRequest([]byte(raw), -1)
		require.ErrorIs(t, err, ErrTooManyHeaders)
		require.Nil(t, request)

		_, err = ParseResponse([]byte("HTTP/1.1 200 OK\r\nX: y\r\n\r\n"), -1)
		require.ErrorIs(t, err, ErrTooManyHeaders)
	})
}

func TestParseResponse(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		response, err := ParseResponse([]byte("HTTP/1.1 201 Created\r\nconnection: close\r\n\r\n"), 10)
		require.NoError(t, err)
		require.Equal(t, proto.HTTP11, response.Protocol)
		require.Equal(t, status.Created, response.Code)
		require.Equal(t, "Created", response.Reason)
		require.Equal(t, []kv.Pair{{"connection", "close"}}, response.Headers.Expose())
		require.Equal(t, "close", response.Headers.Value("Connection"))
	})

	t.Run("custom and empty reasons", func(t *testing.T) {
		tcs := []struct {
			Raw    string
			Code   status.Code
			Reason string
		}{
			{"HTTP/1.0 404 Nothing Here, Really\r\n\r\n", status.NotFound, "Nothing Here, Really"},
			{"HTTP/1.1 200 \r\n\r\n", status.OK, ""},
			{"HTTP/1.1 204\r\n\r\n", status.NoContent, ""},
			{"HTTP/1.1 599 Whatever\r\n\r\n", 599, "Whatever"},
		}

		for _, tc := range tcs {
			response, err := ParseResponse([]byte(tc.Raw), 10)
			require.NoError(t, err, tc.Raw)
			require.Equal(t, tc.Code, response.Code)
			require.Equal(t, tc.Reason, response.Reason)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tcs := []struct {
			Raw string
			Err error
		}{
			{"HTTP/1.1\r\n\r\n", ErrMalformedHead},
			{"HTTP/3.0 200 OK\r\n\r\n", ErrUnsupportedVersion},
			{"HTTP/1.1 20 OK\r\n\r\n", ErrInvalidStatus},
			{"HTTP/1.1 2000 OK\r\n\r\n", ErrInvalidStatus},
			{"HTTP/1.1 099 OK\r\n\r\n", ErrInvalidStatus},
			{"HTTP/1.1 OK 200\r\n\r\n", ErrInvalidStatus},
			{"HTTP/1.1 200 O\x00K\r\n\r\n", ErrInvalidReason},
			{"HTTP/1.1 200 OK\r\nBad Name: x\r\n\r\n", ErrInvalidHeaderName},
			{"HTTP/1.1 200 OK\r\nX: 1\r\nX: 2\r\n\r\n", ErrTooManyHeaders},
		}

		for _, tc := range tcs {
			response, err := ParseResponse([]byte(tc.Raw), 1)
			require.ErrorIs(t, err, tc.Err, tc.Raw)
			require.Nil(t, response)
		}
	})
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindMalformed, KindOf(ErrTooManyHeaders))
	require.Equal(t, KindToken, KindOf(ErrInvalidHeaderValue))
	require.Equal(t, KindVersion, KindOf(ErrUnsupportedVersion))
	require.Equal(t, KindTooLarge, KindOf(ErrHeadTooLarge))
	require.Equal(t, KindIO, KindOf(IOError{Err: ErrMalformedHead}), "transport kind takes precedence")
	require.Equal(t, KindUnknown, KindOf(nil))
}
