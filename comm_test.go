package auction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestRoundTrip encodes a request, consumes the opcode the way the
// dispatcher does, and decodes into out.
func requestRoundTrip(t *testing.T, in, out Exchange) {
	t.Helper()
	data, err := in.EncodeRequest()
	require.NoError(t, err)
	src := NewStreamSource(data)
	r := NewReader(src)
	require.Equal(t, in.Opcode(), r.ReadStringN(3))
	require.NoError(t, out.DecodeRequest(src))
}

func responseRoundTrip(t *testing.T, in, out Exchange) {
	t.Helper()
	data, err := in.EncodeResponse()
	require.NoError(t, err)
	require.NoError(t, out.DecodeResponse(NewStreamSource(data)))
}

func wallClock() time.Time {
	return time.Date(2023, 12, 8, 14, 30, 5, 0, time.Local)
}

func TestLoginRoundTrip(t *testing.T) {
	in := &Login{UID: "123456", Password: "abcdefgh"}
	out := &Login{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, in.UID, out.UID)
	assert.Equal(t, in.Password, out.Password)

	in.Status = StatusREG
	outR := &Login{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, StatusREG, outR.Status)
}

func TestLogoutRoundTrip(t *testing.T) {
	in := &Logout{UID: "123456", Password: "abcdefgh"}
	out := &Logout{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, *in, *out)

	in.Status = StatusUNR
	outR := &Logout{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, StatusUNR, outR.Status)
}

func TestUnregisterRoundTrip(t *testing.T) {
	in := &Unregister{UID: "654321", Password: "12345678"}
	out := &Unregister{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, *in, *out)

	in.Status = StatusOK
	outR := &Unregister{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, StatusOK, outR.Status)
}

func TestListUserAuctionsRoundTrip(t *testing.T) {
	in := &ListUserAuctions{UID: "123456"}
	out := &ListUserAuctions{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, in.UID, out.UID)

	in.Status = StatusOK
	in.Auctions = []AuctionState{{AID: "001", Active: true}, {AID: "002", Active: false}}
	outR := &ListUserAuctions{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, in.Status, outR.Status)
	assert.Equal(t, in.Auctions, outR.Auctions)
}

func TestListUserAuctionsNotLoggedIn(t *testing.T) {
	in := &ListUserAuctions{Status: StatusNLG}
	out := &ListUserAuctions{}
	responseRoundTrip(t, in, out)
	assert.Equal(t, StatusNLG, out.Status)
	assert.Empty(t, out.Auctions)
}

func TestListUserBidsRoundTrip(t *testing.T) {
	in := &ListUserBids{UID: "123456"}
	out := &ListUserBids{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, in.UID, out.UID)

	in.Status = StatusOK
	in.Auctions = []AuctionState{{AID: "007", Active: true}}
	outR := &ListUserBids{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, in.Auctions, outR.Auctions)
}

func TestListAllAuctionsRoundTrip(t *testing.T) {
	in := &ListAllAuctions{}
	out := &ListAllAuctions{}
	requestRoundTrip(t, in, out)

	in.Status = StatusOK
	in.Auctions = []AuctionState{{AID: "001", Active: false}}
	outR := &ListAllAuctions{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, in.Auctions, outR.Auctions)
}

func TestShowRecordRoundTrip(t *testing.T) {
	start := wallClock()
	in := &ShowRecord{AID: "001"}
	out := &ShowRecord{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, "001", out.AID)

	in.Status = StatusOK
	in.Host = "123456"
	in.Name = "car"
	in.FileName = "a.txt"
	in.StartValue = 100
	in.StartTime = start
	in.Duration = 60
	in.Bids = []BidEntry{
		{Bidder: "654321", Value: 150, Time: start.Add(10 * time.Second), Elapsed: 10},
		{Bidder: "111111", Value: 200, Time: start.Add(20 * time.Second), Elapsed: 20},
	}
	in.HasEnded = true
	in.EndTime = start.Add(60 * time.Second)
	in.EndElapsed = 60

	outR := &ShowRecord{}
	responseRoundTrip(t, in, outR)
	outR.AID = in.AID // request field, not part of the reply
	assert.Equal(t, *in, *outR)
}

func TestShowRecordActiveHasNoEndEntry(t *testing.T) {
	in := &ShowRecord{
		Status:     StatusOK,
		Host:       "123456",
		Name:       "car",
		FileName:   "a.txt",
		StartValue: 100,
		StartTime:  wallClock(),
		Duration:   60,
	}
	out := &ShowRecord{}
	responseRoundTrip(t, in, out)
	assert.False(t, out.HasEnded)
	assert.Empty(t, out.Bids)
}

func TestOpenAuctionRoundTrip(t *testing.T) {
	blob := []byte("abc\n\x00def with spaces")
	in := &OpenAuction{
		UID:        "123456",
		Password:   "abcdefgh",
		Name:       "car",
		StartValue: 100,
		Duration:   60,
		FileName:   "a.txt",
		FileSize:   len(blob),
		FileData:   blob,
	}
	out := &OpenAuction{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, *in, *out)

	in.Status = StatusOK
	in.AID = "001"
	outR := &OpenAuction{}
	responseRoundTrip(t, in, outR)
	assert.Equal(t, StatusOK, outR.Status)
	assert.Equal(t, "001", outR.AID)
}

func TestOpenAuctionEmptyAsset(t *testing.T) {
	in := &OpenAuction{
		UID:      "123456",
		Password: "abcdefgh",
		Name:     "car",
		FileName: "a.txt",
	}
	out := &OpenAuction{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, 0, out.FileSize)
	assert.Empty(t, out.FileData)
}

func TestOpenAuctionSizeMismatchRejected(t *testing.T) {
	in := &OpenAuction{
		UID:      "123456",
		Password: "abcdefgh",
		Name:     "car",
		FileName: "a.txt",
		FileSize: 4,
		FileData: []byte("abc"),
	}
	_, err := in.EncodeRequest()
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestCloseAuctionRoundTrip(t *testing.T) {
	in := &CloseAuction{UID: "123456", Password: "abcdefgh", AID: "001"}
	out := &CloseAuction{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, *in, *out)

	for _, status := range []string{StatusOK, StatusNLG, StatusEAU, StatusEOW, StatusEND} {
		in.Status = status
		outR := &CloseAuction{}
		responseRoundTrip(t, in, outR)
		assert.Equal(t, status, outR.Status)
	}
}

func TestShowAssetRoundTrip(t *testing.T) {
	in := &ShowAsset{AID: "001"}
	out := &ShowAsset{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, "001", out.AID)

	blob := []byte{'a', 'b', 'c'}
	in.Status = StatusOK
	in.FileName = "a.txt"
	in.FileSize = len(blob)
	in.FileData = blob
	outR := &ShowAsset{}
	responseRoundTrip(t, in, outR)
	outR.AID = in.AID
	assert.Equal(t, *in, *outR)
}

func TestBidRoundTrip(t *testing.T) {
	in := &Bid{UID: "654321", Password: "abcdefgh", AID: "001", Value: 150}
	out := &Bid{}
	requestRoundTrip(t, in, out)
	assert.Equal(t, *in, *out)

	for _, status := range []string{StatusNLG, StatusNOK, StatusACC, StatusILG, StatusREF} {
		in.Status = status
		outR := &Bid{}
		responseRoundTrip(t, in, outR)
		assert.Equal(t, status, outR.Status)
	}
}

func TestDecodeResponseOnErrSentinel(t *testing.T) {
	comm := &Login{}
	err := comm.DecodeResponse(NewStreamSource(ErrorResponse()))
	assert.ErrorIs(t, err, ErrProtocolMessage)
}

func TestDecodeRejectsUnknownStatus(t *testing.T) {
	comm := &Login{}
	err := comm.DecodeResponse(NewStreamSource([]byte("RLI WAT\n")))
	assert.ErrorIs(t, err, ErrProtocolViolation)
}
