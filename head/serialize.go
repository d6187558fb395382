package head

import (
	"strconv"

	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/kv"
	"golang.org/x/net/http/httpguts"
)

// AppendRequest appends the wire representation of the request head to dst. The head is
// validated against the same grammar the parser enforces, so whatever is serialized
// successfully decodes back into an equal head. On error, dst is returned unchanged.
//
// Header fields are always written as "Name: Value". A decoded head therefore re-encodes
// byte for byte only if it was written the same way.
func AppendRequest(dst []byte, request *http.Request) ([]byte, error) {
	if !httpguts.ValidHeaderFieldName(request.Method) {
		return dst, ErrInvalidMethod
	}

	if !validTarget(request.URI) {
		return dst, ErrInvalidURI
	}

	if !request.Protocol.Valid() {
		return dst, ErrUnsupportedVersion
	}

	if err := validateFields(request.Headers); err != nil {
		return dst, err
	}

	dst = append(dst, request.Method...)
	dst = append(dst, ' ')
	dst = append(dst, request.URI...)
	dst = append(dst, ' ')
	dst = append(dst, request.Protocol.String()...)
	dst = append(dst, crlf...)

	return appendFields(dst, request.Headers), nil
}

// AppendResponse appends the wire representation of the response head to dst. An empty reason
// phrase is replaced by the registered one, if the code is known. On error, dst is returned
// unchanged.
//
// The status line always carries the space before the reason phrase and header fields are
// written as "Name: Value", so heads like "HTTP/1.1 204\r\n" or "X:y" come back normalized.
func AppendResponse(dst []byte, response *http.Response) ([]byte, error) {
	if !response.Protocol.Valid() {
		return dst, ErrUnsupportedVersion
	}

	if !response.Code.Valid() {
		return dst, ErrInvalidStatus
	}

	reason := response.ReasonOrDefault()
	if !httpguts.ValidHeaderFieldValue(reason) {
		return dst, ErrInvalidReason
	}

	if err := validateFields(response.Headers); err != nil {
		return dst, err
	}

	dst = append(dst, response.Protocol.String()...)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, uint64(response.Code), 10)
	dst = append(dst, ' ')
	dst = append(dst, reason...)
	dst = append(dst, crlf...)

	return appendFields(dst, response.Headers), nil
}

func validateFields(headers *kv.Storage) error {
	if headers == nil {
		return nil
	}

	for _, header := range headers.Expose() {
		if !httpguts.ValidHeaderFieldName(header.Key) {
			return ErrInvalidHeaderName
		}

		// surrounding whitespaces would be lost on the way back
		if !httpguts.ValidHeaderFieldValue(header.Value) || trimOWS(header.Value) != header.Value {
			return ErrInvalidHeaderValue
		}
	}

	return nil
}

func appendFields(dst []byte, headers *kv.Storage) []byte {
	if headers != nil {
		for _, header := range headers.Expose() {
			dst = append(dst, header.Key...)
			dst = append(dst, ": "...)
			dst = append(dst, header.Value...)
			dst = append(dst, crlf...)
		}
	}

	return append(dst, crlf...)
}
