// Command parceld runs the group-chat relay: it accepts connections,
// performs the two-party handshake, fans out cables between live peers, and
// drives the N-party rekey on every membership change.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zentalk/parcel/pkg/relay"
)

const defaultPort = 2315

var (
	port      = flag.Int("p", defaultPort, "port to listen on")
	capacity  = flag.Int("capacity", 32, "maximum number of simultaneously connected peers")
	auditPath = flag.String("audit", "", "path to a SQLite audit log (disabled if empty)")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	var audit *relay.Audit
	if *auditPath != "" {
		a, err := relay.OpenAudit(*auditPath)
		if err != nil {
			log.Fatalf("parceld: open audit log: %v", err)
		}
		audit = a
		defer audit.Close()
	}

	r, err := relay.New(*capacity, audit)
	if err != nil {
		log.Fatalf("parceld: %v", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	if err := r.Listen(addr); err != nil {
		log.Fatalf("parceld: listen on %s: %v", addr, err)
	}
	log.Printf("parceld: listening on %s (capacity %d)", addr, *capacity)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("parceld: relay stopped: %v", err)
	case <-sigCh:
		log.Println("parceld: shutting down")
		if err := r.Close(); err != nil {
			log.Printf("parceld: close: %v", err)
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: parceld [flags]\n\n")
	flag.PrintDefaults()
}
