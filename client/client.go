// Package client drives the auction service from an interactive prompt:
// it builds typed exchanges, routes them over the transport the protocol
// fixes for each kind, and renders the replies.
package client

import (
	"errors"
	"fmt"

	auction "github.com/dfarias/goauction"
	"github.com/dfarias/goauction/pkg/transport"
)

const (
	DefaultHostname = "127.0.0.1"
	DefaultPort     = "58085"

	// downloadDir receives assets fetched with show_asset.
	downloadDir = "auction_files"
)

// ErrUnknownCommand reports an unrecognized prompt command.
var ErrUnknownCommand = errors.New("unknown command")

// ArgumentError reports invalid prompt arguments; rendering it prints the
// command usage.
type ArgumentError struct {
	Usage string
}

func (e *ArgumentError) Error() string {
	return "invalid arguments, usage: " + e.Usage
}

type Client struct {
	hostname string
	port     string
	udp      *transport.UDPClient
	user     User
	toExit   bool
}

// New resolves the server address and opens the session-long UDP socket.
func New(hostname, port string) (*Client, error) {
	udp, err := transport.NewUDPClient(hostname, port)
	if err != nil {
		return nil, err
	}
	return &Client{hostname: hostname, port: port, udp: udp}, nil
}

func (c *Client) Close() error {
	return c.udp.Close()
}

// Do runs one full exchange: encode the request, send it over the
// transport fixed for this kind, and decode the reply into the same value.
func (c *Client) Do(ex auction.Exchange) error {
	request, err := ex.EncodeRequest()
	if err != nil {
		return err
	}
	if ex.IsTCP() {
		return c.doTCP(ex, request)
	}
	reply, err := c.udp.Exchange(request)
	if err != nil {
		return err
	}
	return ex.DecodeResponse(auction.NewStreamSource(reply))
}

// doTCP opens a fresh connection for the request, half-closes after the
// last byte and reads the reply until the server closes.
func (c *Client) doTCP(ex auction.Exchange, request []byte) error {
	conn, err := transport.NewTCPClient(c.hostname, c.port)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Send(request); err != nil {
		return err
	}
	return ex.DecodeResponse(auction.NewTCPSource(conn.Conn()))
}

// Prompt is what the line editor shows: bare when logged out, tagged with
// the session UID when logged in.
func (c *Client) Prompt() string {
	if c.user.IsLoggedIn() {
		return fmt.Sprintf("[%s] > ", c.user.UID())
	}
	return "> "
}
