package http

import (
	"github.com/indigo-web/h1head/http/method"
	"github.com/indigo-web/h1head/http/proto"
	"github.com/indigo-web/h1head/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

// Request is a request head: everything up to, but not including, the message body.
type Request struct {
	// Method is the method token exactly as it was received. Extension methods are kept too.
	Method string
	// URI is the request-target. It is validated, but neither decoded nor normalized.
	URI string
	// Protocol is either HTTP/1.0 or HTTP/1.1.
	Protocol proto.Protocol
	// Headers hold header fields in their wire order and casing, duplicates included.
	// Lookups are case-insensitive.
	Headers Headers
}

// NewRequest returns a HTTP/1.1 request head with no headers.
func NewRequest(method, uri string) *Request {
	return &Request{
		Method:   method,
		URI:      uri,
		Protocol: proto.HTTP11,
		Headers:  kv.New(),
	}
}

// Header appends a header field. Already presented fields with the same name are kept.
func (r *Request) Header(key, value string) *Request {
	r.Headers.Add(key, value)
	return r
}

// MethodKind maps the method token onto a known method. Extension methods are method.Unknown.
func (r *Request) MethodKind() method.Method {
	return method.Parse(r.Method)
}
