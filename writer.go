package auction

import (
	"bytes"
	"strconv"
	"time"
)

// Writer encodes protocol tokens into a message buffer. UIDs, passwords,
// AIDs, auction names and file names are checked on write, so an invalid
// one never reaches the wire; WriteNumber writes any int as given, with no
// sign or digit-count check. The first failure latches like the Reader's.
type Writer struct {
	buf bytes.Buffer
	err error
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded message, or the latched error.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

func (w *Writer) fail() {
	if w.err == nil {
		w.err = ErrProtocolViolation
	}
}

func (w *Writer) WriteChar(c byte) {
	if w.err != nil {
		return
	}
	w.buf.WriteByte(c)
}

func (w *Writer) WriteSpace() {
	w.WriteChar(' ')
}

func (w *Writer) WriteDelimiter() {
	w.WriteChar(MessageDelimiter)
}

func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	w.buf.WriteString(s)
}

func (w *Writer) WriteNumber(number int) {
	w.WriteString(strconv.Itoa(number))
}

func (w *Writer) WriteDateTime(t time.Time) {
	w.WriteString(t.Format(DateTimeLayout))
}

func (w *Writer) WriteUID(uid string) {
	if !ValidUID(uid) {
		w.fail()
		return
	}
	w.WriteString(uid)
}

func (w *Writer) WritePassword(password string) {
	if !ValidPassword(password) {
		w.fail()
		return
	}
	w.WriteString(password)
}

func (w *Writer) WriteAID(aid string) {
	if !ValidAID(aid) {
		w.fail()
		return
	}
	w.WriteString(aid)
}

func (w *Writer) WriteFileName(name string) {
	if !ValidFileName(name) {
		w.fail()
		return
	}
	w.WriteString(name)
}

func (w *Writer) WriteAuctionName(name string) {
	if !ValidAuctionName(name) {
		w.fail()
		return
	}
	w.WriteString(name)
}

// WriteBlob emits the raw asset bytes verbatim.
func (w *Writer) WriteBlob(blob []byte) {
	if w.err != nil {
		return
	}
	w.buf.Write(blob)
}
