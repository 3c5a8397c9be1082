package auction

import (
	"strconv"
	"time"
)

// Reader decodes protocol tokens from a MessageSource. The first failure
// latches into the reader; every subsequent call is a no-op returning a
// zero value, so decoders can run a full field sequence and check Err()
// once at the end.
type Reader struct {
	src MessageSource
	err error
}

func NewReader(src MessageSource) *Reader {
	return &Reader{src: src}
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// ReadChar returns the next byte of the message.
func (r *Reader) ReadChar() byte {
	if r.err != nil {
		return 0
	}
	b, err := r.src.ReadByte()
	if err != nil {
		r.fail(ErrProtocolViolation)
		return 0
	}
	return b
}

// ReadExpectedChar asserts that the next byte equals expected.
func (r *Reader) ReadExpectedChar(expected byte) {
	if c := r.ReadChar(); r.err == nil && c != expected {
		r.fail(ErrProtocolViolation)
	}
}

// ReadOneOf returns the next byte, asserting it is one of options.
func (r *Reader) ReadOneOf(options ...byte) byte {
	c := r.ReadChar()
	if r.err != nil {
		return 0
	}
	for _, option := range options {
		if c == option {
			return c
		}
	}
	r.fail(ErrProtocolViolation)
	return 0
}

func (r *Reader) ReadSpace() {
	r.ReadExpectedChar(' ')
}

func (r *Reader) ReadDelimiter() {
	r.ReadExpectedChar(MessageDelimiter)
}

// ReadString reads until a space or the delimiter; the separator is pushed
// back.
func (r *Reader) ReadString() string {
	return r.ReadStringN(int(^uint(0) >> 1))
}

// ReadStringN reads up to n bytes, stopping (and pushing back) at a space
// or the delimiter.
func (r *Reader) ReadStringN(n int) string {
	if r.err != nil {
		return ""
	}
	var result []byte
	for i := 0; i < n; i++ {
		b, err := r.src.ReadByte()
		if err != nil {
			r.fail(ErrProtocolViolation)
			return ""
		}
		if b == ' ' || b == MessageDelimiter {
			r.src.UnreadByte()
			break
		}
		result = append(result, b)
	}
	return string(result)
}

// ReadExpectedString asserts that the next token equals expected.
func (r *Reader) ReadExpectedString(expected string) {
	if s := r.ReadString(); r.err == nil && s != expected {
		r.fail(ErrProtocolViolation)
	}
}

// ReadStringOneOf returns the next token, asserting it is one of options.
func (r *Reader) ReadStringOneOf(options ...string) string {
	s := r.ReadString()
	if r.err != nil {
		return ""
	}
	for _, option := range options {
		if s == option {
			return s
		}
	}
	r.fail(ErrProtocolViolation)
	return ""
}

// ReadNumber reads an unsigned decimal of at most maxDigits digits.
func (r *Reader) ReadNumber(maxDigits int) int {
	s := r.ReadStringN(maxDigits)
	if r.err != nil {
		return 0
	}
	if len(s) == 0 || !isNumeric(s) {
		r.fail(ErrProtocolViolation)
		return 0
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		r.fail(ErrProtocolViolation)
		return 0
	}
	return value
}

// ReadDateTime reads a date-time in the wire layout, interpreted as local
// time.
func (r *Reader) ReadDateTime() time.Time {
	if r.err != nil {
		return time.Time{}
	}
	raw := make([]byte, 0, len(DateTimeLayout))
	raw = append(raw, r.ReadStringN(4)...) // year
	r.ReadExpectedChar('-')
	raw = append(raw, '-')
	raw = append(raw, r.ReadStringN(2)...) // month
	r.ReadExpectedChar('-')
	raw = append(raw, '-')
	raw = append(raw, r.ReadStringN(2)...) // day
	r.ReadSpace()
	raw = append(raw, ' ')
	raw = append(raw, r.ReadStringN(2)...) // hour
	r.ReadExpectedChar(':')
	raw = append(raw, ':')
	raw = append(raw, r.ReadStringN(2)...) // minute
	r.ReadExpectedChar(':')
	raw = append(raw, ':')
	raw = append(raw, r.ReadStringN(2)...) // second
	if r.err != nil {
		return time.Time{}
	}
	t, err := time.ParseInLocation(DateTimeLayout, string(raw), time.Local)
	if err != nil {
		r.fail(ErrProtocolViolation)
		return time.Time{}
	}
	return t
}

func (r *Reader) ReadUID() string {
	uid := r.ReadStringN(UIDSize)
	if r.err == nil && !ValidUID(uid) {
		r.fail(ErrProtocolViolation)
	}
	return uid
}

func (r *Reader) ReadPassword() string {
	password := r.ReadStringN(PasswordSize)
	if r.err == nil && !ValidPassword(password) {
		r.fail(ErrProtocolViolation)
	}
	return password
}

func (r *Reader) ReadAID() string {
	aid := r.ReadStringN(AIDSize)
	if r.err == nil && !ValidAID(aid) {
		r.fail(ErrProtocolViolation)
	}
	return aid
}

func (r *Reader) ReadFileName() string {
	name := r.ReadStringN(MaxFileNameSize)
	if r.err == nil && !ValidFileName(name) {
		r.fail(ErrProtocolViolation)
	}
	return name
}

func (r *Reader) ReadAuctionName() string {
	name := r.ReadStringN(MaxAuctionNameSize)
	if r.err == nil && !ValidAuctionName(name) {
		r.fail(ErrProtocolViolation)
	}
	return name
}

// ReadOpcode reads the 3-letter reply opcode and asserts it matches. The
// ERR sentinel surfaces as ErrProtocolMessage instead of a violation.
func (r *Reader) ReadOpcode(expected string) {
	opcode := r.ReadStringN(3)
	if r.err != nil {
		return
	}
	if opcode == ErrorIdentifier {
		r.fail(ErrProtocolMessage)
		return
	}
	if opcode != expected {
		r.fail(ErrProtocolViolation)
	}
}

// ReadBlob consumes exactly n raw bytes. The blob is not escaped and may
// contain any byte, including the delimiter.
func (r *Reader) ReadBlob(n int) []byte {
	if r.err != nil {
		return nil
	}
	blob := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.src.ReadByte()
		if err != nil {
			r.fail(ErrProtocolViolation)
			return nil
		}
		blob[i] = b
	}
	return blob
}
