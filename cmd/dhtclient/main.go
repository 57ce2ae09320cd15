// Command dhtclient sends a single put or get command to a DHT node and
// prints the response. Usage mirrors the reference client binary:
//
//	dhtclient HOST PORT get HASH
//	dhtclient HOST PORT put HASH IP
//
// get streams replies until the server sends the "(null)" terminator;
// put sends the command and exits without waiting for a reply (the
// protocol defines no put acknowledgement).
package main

import (
	"fmt"
	"os"

	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/netio"
)

const nullTerminator = "(null)"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 5 && len(args) != 6 {
		return fmt.Errorf("usage: %s HOST PORT get HASH | %s HOST PORT put HASH IP", args[0], args[0])
	}

	host, port, cmd, hash := args[1], args[2], args[3], args[4]

	var ip string
	switch {
	case cmd == "get" && len(args) == 5:
		ip = ""
	case cmd == "put" && len(args) == 6:
		ip = args[5]
	case cmd == "get":
		return fmt.Errorf("usage: %s HOST PORT get HASH", args[0])
	default:
		return fmt.Errorf("usage: %s HOST PORT put HASH IP", args[0])
	}

	if _, err := config.ParsePort(port); err != nil {
		return err
	}

	dst, err := netio.Open(host, port, netio.ModeSend)
	if err != nil {
		return fmt.Errorf("can't connect to dht node: %w", err)
	}
	defer dst.Close()

	payload := fmt.Sprintf("%s %s %s", cmd, hash, ip)
	if _, err := dst.SendText(payload); err != nil {
		return fmt.Errorf("send %q: %w", payload, err)
	}

	if cmd != "get" {
		return nil
	}

	for {
		n, _, err := dst.Receive()
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		line := string(dst.Payload(n))
		if line == nullTerminator {
			break
		}
		fmt.Println(line)
	}
	return nil
}
