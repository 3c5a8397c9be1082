// Package transport provides the UDP and TCP endpoints of the auction
// protocol. Short queries travel as single datagrams; bulk exchanges open
// a fresh TCP connection per request.
package transport

import (
	"errors"
	"time"
)

const (
	// MaxClientDatagram bounds client-outbound datagrams.
	MaxClientDatagram = 6001

	// MaxRequestDatagram bounds server-inbound datagrams; the largest UDP
	// request (LIN and friends) is 20 bytes.
	MaxRequestDatagram = 20

	// TCPChunkSize is the write granularity on TCP connections.
	TCPChunkSize = 512

	// RecvTimeout bounds a wait for the peer: reply wait on the client,
	// request wait on an accepted server socket.
	RecvTimeout = 5 * time.Second
)

var (
	// ErrTimeout reports that the peer did not produce bytes within
	// RecvTimeout.
	ErrTimeout = errors.New("timed out waiting for the peer")

	// ErrOversizeDatagram reports a datagram beyond the protocol cap.
	ErrOversizeDatagram = errors.New("datagram exceeds the protocol size limit")

	// ErrPartialWrite reports a datagram that was not sent whole.
	ErrPartialWrite = errors.New("datagram was not sent whole")
)
