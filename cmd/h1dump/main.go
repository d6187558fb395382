package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/indigo-web/h1head/config"
	"github.com/indigo-web/h1head/transport"
)

func main() {
	addr := flag.String("addr", "0.0.0.0:8080", "address to listen on")
	maxSize := flag.Int("max-head-size", 8*1024, "maximal size of a request head in bytes")
	maxHeaders := flag.Int("max-headers", 128, "maximal number of header fields")
	flag.Parse()
	log.SetPrefix("h1dump: ")

	if *maxSize < len("GET / HTTP/1.1\r\n\r\n") || *maxHeaders < 0 {
		log.Fatalf("invalid limits: max-head-size=%d max-headers=%d", *maxSize, *maxHeaders)
	}

	cfg := config.Default()
	cfg.Head.MaxSize = *maxSize
	cfg.Head.InitialSize = min(cfg.Head.InitialSize, *maxSize)
	cfg.Head.MaxHeaders = *maxHeaders

	tcp := transport.NewTCP()
	if err := tcp.Bind(*addr); err != nil {
		log.Fatalf("bind %s: %s", *addr, err)
	}

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		log.Println("shutting down")
		tcp.Stop()
	}()

	log.Println("listening on", tcp.Addr())
	d := newDumper(cfg, os.Stdout)
	if err := tcp.Listen(cfg.NET, func(conn net.Conn) {
		d.Serve(transport.NewClient(conn, cfg.NET))
	}); err != nil {
		log.Fatal(err)
	}

	tcp.Close()
	tcp.Wait()
}
