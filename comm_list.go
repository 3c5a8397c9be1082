package auction

import "time"

// AuctionState is one entry of a listing reply.
type AuctionState struct {
	AID    string
	Active bool
}

func stateDigit(active bool) string {
	if active {
		return StateActive
	}
	return StateEnded
}

func encodeListResponse(w *Writer, opcode, status string, entries []AuctionState) ([]byte, error) {
	w.WriteString(opcode)
	w.WriteSpace()
	w.WriteString(status)
	for _, entry := range entries {
		w.WriteSpace()
		w.WriteAID(entry.AID)
		w.WriteSpace()
		w.WriteString(stateDigit(entry.Active))
	}
	w.WriteDelimiter()
	return w.Bytes()
}

func decodeListResponse(r *Reader) []AuctionState {
	var entries []AuctionState
	for {
		c := r.ReadOneOf(' ', MessageDelimiter)
		if r.Err() != nil || c == MessageDelimiter {
			return entries
		}
		aid := r.ReadAID()
		r.ReadSpace()
		state := r.ReadStringOneOf(StateEnded, StateActive)
		entries = append(entries, AuctionState{AID: aid, Active: state == StateActive})
	}
}

// ListUserAuctions carries an LMA request and its RMA reply.
type ListUserAuctions struct {
	// Request
	UID string
	// Response
	Status   string
	Auctions []AuctionState
}

func (c *ListUserAuctions) Opcode() string { return "LMA" }
func (c *ListUserAuctions) IsTCP() bool    { return false }

func (c *ListUserAuctions) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ListUserAuctions) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadDelimiter()
	return r.Err()
}

func (c *ListUserAuctions) EncodeResponse() ([]byte, error) {
	return encodeListResponse(NewWriter(), "RMA", c.Status, c.Auctions)
}

func (c *ListUserAuctions) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RMA")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusNLG)
	if c.Status != StatusOK {
		r.ReadDelimiter()
		return r.Err()
	}
	c.Auctions = decodeListResponse(r)
	return r.Err()
}

// ListUserBids carries an LMB request and its RMB reply.
type ListUserBids struct {
	// Request
	UID string
	// Response
	Status   string
	Auctions []AuctionState
}

func (c *ListUserBids) Opcode() string { return "LMB" }
func (c *ListUserBids) IsTCP() bool    { return false }

func (c *ListUserBids) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteUID(c.UID)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ListUserBids) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.UID = r.ReadUID()
	r.ReadDelimiter()
	return r.Err()
}

func (c *ListUserBids) EncodeResponse() ([]byte, error) {
	return encodeListResponse(NewWriter(), "RMB", c.Status, c.Auctions)
}

func (c *ListUserBids) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RMB")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK, StatusNLG)
	if c.Status != StatusOK {
		r.ReadDelimiter()
		return r.Err()
	}
	c.Auctions = decodeListResponse(r)
	return r.Err()
}

// ListAllAuctions carries an LST request and its RLS reply.
type ListAllAuctions struct {
	// Response
	Status   string
	Auctions []AuctionState
}

func (c *ListAllAuctions) Opcode() string { return "LST" }
func (c *ListAllAuctions) IsTCP() bool    { return false }

func (c *ListAllAuctions) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ListAllAuctions) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadDelimiter()
	return r.Err()
}

func (c *ListAllAuctions) EncodeResponse() ([]byte, error) {
	return encodeListResponse(NewWriter(), "RLS", c.Status, c.Auctions)
}

func (c *ListAllAuctions) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RLS")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK)
	if c.Status != StatusOK {
		r.ReadDelimiter()
		return r.Err()
	}
	c.Auctions = decodeListResponse(r)
	return r.Err()
}

// BidEntry is one bid of a record reply.
type BidEntry struct {
	Bidder  string
	Value   int
	Time    time.Time
	Elapsed int
}

// ShowRecord carries an SRC request and its RRC reply: the start record,
// the bid log in ascending value order, and an end entry once the auction
// has ended.
type ShowRecord struct {
	// Request
	AID string
	// Response
	Status     string
	Host       string
	Name       string
	FileName   string
	StartValue int
	StartTime  time.Time
	Duration   int
	Bids       []BidEntry
	HasEnded   bool
	EndTime    time.Time
	EndElapsed int
}

func (c *ShowRecord) Opcode() string { return "SRC" }
func (c *ShowRecord) IsTCP() bool    { return false }

func (c *ShowRecord) EncodeRequest() ([]byte, error) {
	w := NewWriter()
	w.WriteString(c.Opcode())
	w.WriteSpace()
	w.WriteAID(c.AID)
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ShowRecord) DecodeRequest(src MessageSource) error {
	r := NewReader(src)
	r.ReadSpace()
	c.AID = r.ReadAID()
	r.ReadDelimiter()
	return r.Err()
}

func (c *ShowRecord) EncodeResponse() ([]byte, error) {
	w := NewWriter()
	w.WriteString("RRC")
	w.WriteSpace()
	w.WriteString(c.Status)
	if c.Status != StatusOK {
		w.WriteDelimiter()
		return w.Bytes()
	}
	w.WriteSpace()
	w.WriteUID(c.Host)
	w.WriteSpace()
	w.WriteAuctionName(c.Name)
	w.WriteSpace()
	w.WriteFileName(c.FileName)
	w.WriteSpace()
	w.WriteNumber(c.StartValue)
	w.WriteSpace()
	w.WriteDateTime(c.StartTime)
	w.WriteSpace()
	w.WriteNumber(c.Duration)
	for _, bid := range c.Bids {
		w.WriteSpace()
		w.WriteChar('B')
		w.WriteSpace()
		w.WriteUID(bid.Bidder)
		w.WriteSpace()
		w.WriteNumber(bid.Value)
		w.WriteSpace()
		w.WriteDateTime(bid.Time)
		w.WriteSpace()
		w.WriteNumber(bid.Elapsed)
	}
	if c.HasEnded {
		w.WriteSpace()
		w.WriteChar('E')
		w.WriteSpace()
		w.WriteDateTime(c.EndTime)
		w.WriteSpace()
		w.WriteNumber(c.EndElapsed)
	}
	w.WriteDelimiter()
	return w.Bytes()
}

func (c *ShowRecord) DecodeResponse(src MessageSource) error {
	r := NewReader(src)
	r.ReadOpcode("RRC")
	r.ReadSpace()
	c.Status = r.ReadStringOneOf(StatusOK, StatusNOK)
	if c.Status != StatusOK {
		r.ReadDelimiter()
		return r.Err()
	}
	r.ReadSpace()
	c.Host = r.ReadUID()
	r.ReadSpace()
	c.Name = r.ReadAuctionName()
	r.ReadSpace()
	c.FileName = r.ReadFileName()
	r.ReadSpace()
	c.StartValue = r.ReadNumber(MaxStartValueSize)
	r.ReadSpace()
	c.StartTime = r.ReadDateTime()
	r.ReadSpace()
	c.Duration = r.ReadNumber(MaxDurationSize)
	for {
		sep := r.ReadOneOf(' ', MessageDelimiter)
		if r.Err() != nil {
			return r.Err()
		}
		if sep == MessageDelimiter {
			return nil
		}
		tag := r.ReadOneOf('B', 'E')
		r.ReadSpace()
		if tag == 'B' {
			var bid BidEntry
			bid.Bidder = r.ReadUID()
			r.ReadSpace()
			bid.Value = r.ReadNumber(MaxStartValueSize)
			r.ReadSpace()
			bid.Time = r.ReadDateTime()
			r.ReadSpace()
			bid.Elapsed = r.ReadNumber(MaxDurationSize)
			if r.Err() != nil {
				return r.Err()
			}
			c.Bids = append(c.Bids, bid)
			continue
		}
		c.HasEnded = true
		c.EndTime = r.ReadDateTime()
		r.ReadSpace()
		c.EndElapsed = r.ReadNumber(MaxDurationSize)
		r.ReadDelimiter()
		return r.Err()
	}
}
