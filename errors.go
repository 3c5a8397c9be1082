package auction

import "errors"

var (
	// ErrProtocolViolation reports a lexical or structural deviation in a
	// received message. The exchange is unusable past this point.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrProtocolMessage reports that the peer answered with the ERR sentinel
	// instead of a reply.
	ErrProtocolMessage = errors.New("peer replied with a protocol message error")
)
