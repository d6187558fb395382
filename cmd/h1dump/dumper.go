package main

import (
	"errors"
	"io"
	"log"
	"sync"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/head"
	"github.com/indigo-web/h1head/http"
	"github.com/indigo-web/h1head/http/status"
	json "github.com/json-iterator/go"
)

type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type entry struct {
	Method   string   `json:"method"`
	URI      string   `json:"uri"`
	Protocol string   `json:"protocol"`
	Headers  []header `json:"headers"`
}

func newEntry(request *http.Request) entry {
	headers := make([]header, 0, request.Headers.Len())
	for key, value := range request.Headers.Iter() {
		headers = append(headers, header{Name: key, Value: value})
	}

	return entry{
		Method:   request.Method,
		URI:      request.URI,
		Protocol: request.Protocol.String(),
		Headers:  headers,
	}
}

// dumper reads a single request head per connection, writes it out as a JSON line and
// answers with an empty response.
type dumper struct {
	decoder head.RequestDecoder
	encoder head.Encoder
	mu      sync.Mutex
	out     io.Writer
}

func newDumper(cfg *config.Config, out io.Writer) *dumper {
	return &dumper{
		decoder: head.NewRequestDecoder(cfg),
		encoder: head.NewEncoder(cfg),
		out:     out,
	}
}

func (d *dumper) Serve(conn io.ReadWriter) {
	request, err := d.decoder.Read(conn)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return
		}

		log.Printf("bad request head: %s", err)
		d.respond(conn, errorCode(err))
		return
	}

	if err = d.dump(request); err != nil {
		log.Printf("dump: %s", err)
	}

	d.respond(conn, status.NoContent)
}

func (d *dumper) dump(request *http.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stream := json.ConfigDefault.BorrowStream(d.out)
	defer json.ConfigDefault.ReturnStream(stream)

	stream.WriteVal(newEntry(request))
	stream.WriteRaw("\n")

	return stream.Flush()
}

func (d *dumper) respond(conn io.Writer, code status.Code) {
	response := http.NewResponse(code).
		Header("Content-Length", "0").
		Header("Connection", "close")

	if err := d.encoder.EncodeResponse(conn, response); err != nil {
		log.Printf("write response: %s", err)
	}
}

func errorCode(err error) status.Code {
	if errors.Is(err, head.ErrTooManyHeaders) {
		return status.RequestHeaderFieldsTooLarge
	}

	switch head.KindOf(err) {
	case head.KindTooLarge:
		return status.RequestHeaderFieldsTooLarge
	case head.KindVersion:
		return status.HTTPVersionNotSupported
	case head.KindIO:
		return status.RequestTimeout
	default:
		return status.BadRequest
	}
}
