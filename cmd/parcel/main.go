// Command parcel is the group-chat client: it connects to a relay, runs
// the two-party handshake, and then drives concurrent send and receive
// loops over the resulting session.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/user"

	"github.com/zentalk/parcel/pkg/client"
	"github.com/zentalk/parcel/pkg/keyexchange"
)

const defaultPort = 2315

var (
	addr         = flag.String("a", "", "relay address")
	port         = flag.Int("p", defaultPort, "relay port")
	username     = flag.String("u", "", "display name (<=32 bytes)")
	useLoginName = flag.Bool("l", false, "use the OS login name as the display name")
	downloadDir  = flag.String("dir", ".", "directory incoming files are written to")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	stdin := bufio.NewReader(os.Stdin)
	host := resolveAddr(*addr, stdin)
	name := resolveUsername(*username, *useLoginName, stdin)

	dest := fmt.Sprintf("%s:%d", host, *port)
	conn, err := net.Dial("tcp", dest)
	if err != nil {
		log.Fatalf("parcel: connect to %s: %v", dest, err)
	}
	defer conn.Close()

	controlKey, err := keyexchange.ClientHandshake(conn)
	if err != nil {
		log.Fatalf("parcel: handshake with %s: %v", dest, err)
	}
	log.Printf("parcel: connected to %s as %q", dest, name)

	ctx := client.NewContext(conn, name, controlKey)

	go func() {
		if err := client.ReceiveLoop(ctx, *downloadDir); err != nil {
			log.Printf("parcel: connection closed: %v", err)
			ctx.Kill()
		}
	}()

	if err := client.SendLoop(ctx, stdin); err != nil {
		log.Fatalf("parcel: %v", err)
	}
}

// resolveAddr prompts interactively when -a was not given, per the CLI
// surface's "mandatory fields missing => prompt interactively" rule. It
// reads from the same stdin reader SendLoop will later consume from, so a
// pre-buffered answer (piped input) isn't dropped between prompts.
func resolveAddr(given string, stdin *bufio.Reader) string {
	if given != "" {
		return given
	}
	fmt.Print("relay address: ")
	line, _ := stdin.ReadString('\n')
	return trimNewline(line)
}

func resolveUsername(given string, useLogin bool, stdin *bufio.Reader) string {
	if given != "" {
		return given
	}
	if useLogin {
		if u, err := user.Current(); err == nil && u.Username != "" {
			return u.Username
		}
	}
	fmt.Print("username: ")
	line, _ := stdin.ReadString('\n')
	return trimNewline(line)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: parcel -a ADDR [flags]\n\n")
	flag.PrintDefaults()
}
