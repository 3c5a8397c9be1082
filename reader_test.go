package auction

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(message string) *Reader {
	return NewReader(NewStreamSource([]byte(message)))
}

func TestReadStringStopsAtSeparators(t *testing.T) {
	r := newReader("hello world\n")
	assert.Equal(t, "hello", r.ReadString())
	r.ReadSpace()
	assert.Equal(t, "world", r.ReadString())
	r.ReadDelimiter()
	assert.NoError(t, r.Err())
}

func TestReadStringNPushesBackSeparator(t *testing.T) {
	r := newReader("abcdef more\n")
	assert.Equal(t, "abc", r.ReadStringN(3))
	assert.Equal(t, "def", r.ReadString())
	r.ReadSpace()
	assert.NoError(t, r.Err())
}

func TestReadUID(t *testing.T) {
	r := newReader("123456 ")
	assert.Equal(t, "123456", r.ReadUID())
	assert.NoError(t, r.Err())

	for _, bad := range []string{"12345 ", "12a456 ", "1234567 "} {
		r := newReader(bad)
		r.ReadUID()
		// An over-long UID shows at the separator that must follow it.
		r.ReadSpace()
		assert.ErrorIs(t, r.Err(), ErrProtocolViolation, "uid %q", bad)
	}
}

func TestReadPassword(t *testing.T) {
	r := newReader("abcd1234\n")
	assert.Equal(t, "abcd1234", r.ReadPassword())
	assert.NoError(t, r.Err())

	r = newReader("abc!1234\n")
	r.ReadPassword()
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadFileNameOverlengthIsViolation(t *testing.T) {
	// 25 chars: one past the cap, so the 25th byte is not a separator.
	r := newReader("a234567890123456789012345 \n")
	r.ReadFileName()
	r.ReadSpace()
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadAuctionNameOverlength(t *testing.T) {
	r := newReader("elevenchars ok\n")
	r.ReadAuctionName()
	r.ReadSpace()
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadNumber(t *testing.T) {
	r := newReader("100 ")
	assert.Equal(t, 100, r.ReadNumber(MaxStartValueSize))
	assert.NoError(t, r.Err())

	r = newReader("1x0 ")
	r.ReadNumber(MaxStartValueSize)
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)

	r = newReader(" ")
	r.ReadNumber(MaxStartValueSize)
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadDateTime(t *testing.T) {
	r := newReader("2023-12-08 14:30:05 ")
	got := r.ReadDateTime()
	require.NoError(t, r.Err())
	want := time.Date(2023, 12, 8, 14, 30, 5, 0, time.Local)
	assert.True(t, got.Equal(want), "got %v", got)

	r = newReader("2023-12-08T14:30:05 ")
	r.ReadDateTime()
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadOpcode(t *testing.T) {
	r := newReader("RLI OK\n")
	r.ReadOpcode("RLI")
	assert.NoError(t, r.Err())

	r = newReader("ERR\n")
	r.ReadOpcode("RLI")
	assert.ErrorIs(t, r.Err(), ErrProtocolMessage)

	r = newReader("RLO OK\n")
	r.ReadOpcode("RLI")
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestReadBlobKeepsRawBytes(t *testing.T) {
	blob := []byte{'a', '\n', 0x00, ' ', 0xff}
	r := NewReader(NewStreamSource(append(append([]byte{}, blob...), '\n')))
	assert.Equal(t, blob, r.ReadBlob(len(blob)))
	r.ReadDelimiter()
	assert.NoError(t, r.Err())
}

func TestTruncatedMessageIsViolation(t *testing.T) {
	r := newReader("OK")
	r.ReadString()
	r.ReadDelimiter()
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestErrorLatches(t *testing.T) {
	r := newReader("x 123456\n")
	r.ReadExpectedChar('y')
	require.ErrorIs(t, r.Err(), ErrProtocolViolation)
	// Subsequent reads are no-ops on a failed reader.
	assert.Equal(t, "", r.ReadUID())
	assert.ErrorIs(t, r.Err(), ErrProtocolViolation)
}

func TestWriterValidation(t *testing.T) {
	w := NewWriter()
	w.WriteUID("12345")
	_, err := w.Bytes()
	assert.ErrorIs(t, err, ErrProtocolViolation)

	w = NewWriter()
	w.WriteAuctionName("car")
	w.WriteSpace()
	w.WriteFileName("a.txt")
	w.WriteDelimiter()
	data, err := w.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "car a.txt\n", string(data))
}

func TestTCPSourceUnget(t *testing.T) {
	src := NewTCPSource(newChunkReader("LIN 123456 abcdefgh\n", 3))
	r := NewReader(src)
	// ReadString overshoots onto the space and pushes it back.
	assert.Equal(t, "LIN", r.ReadString())
	r.ReadSpace()
	assert.Equal(t, "123456", r.ReadUID())
	r.ReadSpace()
	assert.Equal(t, "abcdefgh", r.ReadPassword())
	r.ReadDelimiter()
	assert.NoError(t, r.Err())
}

// chunkReader drips bytes a few at a time to exercise the deque refills.
type chunkReader struct {
	data []byte
	step int
}

func newChunkReader(s string, step int) *chunkReader {
	return &chunkReader{data: []byte(s), step: step}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.step
	if n > len(c.data) || n > len(p) {
		if len(c.data) < len(p) {
			n = len(c.data)
		} else {
			n = len(p)
		}
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}
