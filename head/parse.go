package head

import (
	"net"
	"net/url"
	"strings"

	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/http/proto"
	"github.com/indigo-web/h1head/http/status"
	"github.com/indigo-web/h1head/internal/terminator"
	"github.com/indigo-web/h1head/kv"
	"github.com/indigo-web/utils/uf"
	"golang.org/x/net/http/httpguts"
)

const crlf = "\r\n"

// ParseRequest parses a complete request head, terminating empty line included. The result
// doesn't reference buf.
//
// Heads with more than maxHeaders header fields are rejected with ErrTooManyHeaders.
func ParseRequest(buf []byte, maxHeaders int) (*http.Request, error) {
	return parseRequest(string(buf), maxHeaders)
}

// ParseResponse parses a complete response head, terminating empty line included. The result
// doesn't reference buf.
//
// Heads with more than maxHeaders header fields are rejected with ErrTooManyHeaders.
func ParseResponse(buf []byte, maxHeaders int) (*http.Response, error) {
	return parseResponse(string(buf), maxHeaders)
}

// parseRequest returns a request whose strings are substrings of head.
func parseRequest(head string, maxHeaders int) (*http.Request, error) {
	startLine, fields, err := cutHead(head)
	if err != nil {
		return nil, err
	}

	methodToken, rest, found := strings.Cut(startLine, " ")
	if !found {
		return nil, ErrMalformedHead
	}

	target, version, found := strings.Cut(rest, " ")
	if !found {
		return nil, ErrMalformedHead
	}

	if !httpguts.ValidHeaderFieldName(methodToken) {
		return nil, ErrInvalidMethod
	}

	if !validTarget(target) {
		return nil, ErrInvalidURI
	}

	protocol := proto.FromBytes(uf.S2B(version))
	if protocol == proto.Unknown {
		return nil, ErrUnsupportedVersion
	}

	headers, err := parseFields(fields, maxHeaders)
	if err != nil {
		return nil, err
	}

	return &http.Request{
		Method:   methodToken,
		URI:      target,
		Protocol: protocol,
		Headers:  headers,
	}, nil
}

// parseResponse returns a response whose strings are substrings of head.
func parseResponse(head string, maxHeaders int) (*http.Response, error) {
	startLine, fields, err := cutHead(head)
	if err != nil {
		return nil, err
	}

	version, rest, found := strings.Cut(startLine, " ")
	if !found {
		return nil, ErrMalformedHead
	}

	protocol := proto.FromBytes(uf.S2B(version))
	if protocol == proto.Unknown {
		return nil, ErrUnsupportedVersion
	}

	// the reason phrase may be omitted together with the separating space
	rawCode, reason, _ := strings.Cut(rest, " ")
	code, ok := status.FromBytes(uf.S2B(rawCode))
	if !ok {
		return nil, ErrInvalidStatus
	}

	if !httpguts.ValidHeaderFieldValue(reason) {
		return nil, ErrInvalidReason
	}

	headers, err := parseFields(fields, maxHeaders)
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Protocol: protocol,
		Code:     code,
		Reason:   reason,
		Headers:  headers,
	}, nil
}

// cutHead strips the terminator and splits the start line off the header fields block.
func cutHead(head string) (startLine, fields string, err error) {
	head, found := strings.CutSuffix(head, terminator.CRLFCRLF)
	// an empty line before the last one means the head had already ended there
	if !found || strings.HasSuffix(head, crlf) {
		return "", "", ErrMalformedHead
	}

	startLine, fields, _ = strings.Cut(head, crlf)
	if len(startLine) == 0 {
		return "", "", ErrMalformedHead
	}

	return startLine, fields, nil
}

func parseFields(fields string, maxHeaders int) (*kv.Storage, error) {
	if len(fields) == 0 {
		return kv.New(), nil
	}

	headers := kv.NewPrealloc(max(min(strings.Count(fields, crlf)+1, maxHeaders), 0))

	for len(fields) > 0 {
		if headers.Len() >= maxHeaders {
			return nil, ErrTooManyHeaders
		}

		var line string
		line, fields, _ = strings.Cut(fields, crlf)

		name, value, found := strings.Cut(line, ":")
		if !found || isOWS(line[0]) {
			// a line without a colon, an empty line or an obsolete line folding
			return nil, ErrMalformedHead
		}

		if !httpguts.ValidHeaderFieldName(name) {
			return nil, ErrInvalidHeaderName
		}

		value = trimOWS(value)
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, ErrInvalidHeaderValue
		}

		headers.Add(name, value)
	}

	return headers, nil
}

// validTarget accepts the four request-target forms: origin, absolute, authority and asterisk.
func validTarget(target string) bool {
	if len(target) == 0 {
		return false
	}

	for i := 0; i < len(target); i++ {
		if c := target[i]; c <= ' ' || c >= 0x7f {
			return false
		}
	}

	if target == "*" {
		return true
	}

	uri, err := url.ParseRequestURI(target)
	if target[0] == '/' {
		return err == nil
	}

	if err == nil && len(uri.Scheme) > 0 && len(uri.Host) > 0 {
		return true
	}

	// CONNECT uses bare host:port
	host, port, err := net.SplitHostPort(target)
	return err == nil && len(host) > 0 && len(port) > 0 && isDigits(port)
}

func isDigits(str string) bool {
	for i := 0; i < len(str); i++ {
		if str[i] < '0' || str[i] > '9' {
			return false
		}
	}

	return true
}

func isOWS(c byte) bool {
	return c == ' ' || c == '\t'
}

func trimOWS(str string) string {
	for len(str) > 0 && isOWS(str[0]) {
		str = str[1:]
	}

	for len(str) > 0 && isOWS(str[len(str)-1]) {
		str = str[:len(str)-1]
	}

	return str
}
