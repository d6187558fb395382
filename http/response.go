package http

import (
	"github.com/indigo-web/h1head/http/proto"
	"github.com/indigo-web/h1head/http/status"
	"github.com/indigo-web/h1head/kv"
)

// Response is a response head: the status line and header fields.
type Response struct {
	Protocol proto.Protocol
	Code     status.Code
	// Reason is the reason-phrase as received. If empty, encoders fall back to the
	// registered one for the code.
	Reason  string
	Headers Headers
}

// NewResponse returns a HTTP/1.1 response head with the registered reason phrase of the code.
func NewResponse(code status.Code) *Response {
	return &Response{
		Protocol: proto.HTTP11,
		Code:     code,
		Reason:   status.Text(code),
		Headers:  kv.New(),
	}
}

// Header appends a header field. Already presented fields with the same name are kept.
func (r *Response) Header(key, value string) *Response {
	r.Headers.Add(key, value)
	return r
}

// ReasonOrDefault returns the reason phrase, or the registered one if no phrase is set.
func (r *Response) ReasonOrDefault() string {
	if len(r.Reason) > 0 {
		return r.Reason
	}

	return status.Text(r.Code)
}
