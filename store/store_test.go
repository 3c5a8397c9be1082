package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "database"))
	require.NoError(t, err)
	return s
}

func startInfo(host string, duration int) StartInfo {
	return StartInfo{
		Host:       host,
		Name:       "car",
		AssetName:  "a.txt",
		StartValue: 100,
		Duration:   duration,
		Start:      time.Now(),
	}
}

func TestOpenCreatesLayout(t *testing.T) {
	s := newStore(t)
	for _, dir := range []string{"USERS", "AUCTIONS"} {
		info, err := os.Stat(filepath.Join(s.Path(), dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newStore(t)

	ok, err := s.UserExists("123456")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateUser("123456", "abcdefgh"))
	assert.Error(t, s.CreateUser("123456", "abcdefgh"))

	registered, err := s.IsRegistered("123456")
	require.NoError(t, err)
	assert.True(t, registered)

	password, err := s.Password("123456")
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", password)

	require.NoError(t, s.SetLoggedIn("123456"))
	require.NoError(t, s.SetLoggedIn("123456")) // idempotent
	loggedIn, err := s.IsLoggedIn("123456")
	require.NoError(t, err)
	assert.True(t, loggedIn)

	require.NoError(t, s.ClearLoggedIn("123456"))
	require.NoError(t, s.ClearLoggedIn("123456")) // idempotent
	loggedIn, err = s.IsLoggedIn("123456")
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestUnregisterRetainsLinks(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateUser("123456", "abcdefgh"))
	aid, err := s.CreateAuction(startInfo("123456", 60), []byte("abc"))
	require.NoError(t, err)
	require.NoError(t, s.AddHosted("123456", aid))

	require.NoError(t, s.Unregister("123456"))

	registered, err := s.IsRegistered("123456")
	require.NoError(t, err)
	assert.False(t, registered)
	ok, err := s.UserExists("123456")
	require.NoError(t, err)
	assert.True(t, ok)

	hosted, err := s.HostedAuctions("123456")
	require.NoError(t, err)
	assert.Equal(t, []string{aid}, hosted)

	// Re-registration brings the user back with a fresh password.
	require.NoError(t, s.SetPassword("123456", "newpass0"))
	password, err := s.Password("123456")
	require.NoError(t, err)
	assert.Equal(t, "newpass0", password)
}

func TestCreateAuctionAssignsMonotonicAIDs(t *testing.T) {
	s := newStore(t)
	first, err := s.CreateAuction(startInfo("123456", 60), []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "001", first)

	second, err := s.CreateAuction(startInfo("123456", 60), nil)
	require.NoError(t, err)
	assert.Equal(t, "002", second)

	all, err := s.AllAuctions()
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, all)
}

func TestStartRecordRoundTrip(t *testing.T) {
	s := newStore(t)
	want := startInfo("123456", 60)
	aid, err := s.CreateAuction(want, []byte("abc"))
	require.NoError(t, err)

	got, err := s.AuctionStart(aid)
	require.NoError(t, err)
	assert.Equal(t, want.Host, got.Host)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.AssetName, got.AssetName)
	assert.Equal(t, want.StartValue, got.StartValue)
	assert.Equal(t, want.Duration, got.Duration)
	assert.Equal(t, want.Start.Unix(), got.Start.Unix())
}

func TestAssetRoundTrip(t *testing.T) {
	s := newStore(t)
	blob := []byte("abc\n\x00binary")
	aid, err := s.CreateAuction(startInfo("123456", 60), blob)
	require.NoError(t, err)

	name, data, err := s.Asset(aid)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", name)
	assert.Equal(t, blob, data)
}

func TestEndAuctionOnlyOnce(t *testing.T) {
	s := newStore(t)
	aid, err := s.CreateAuction(startInfo("123456", 60), nil)
	require.NoError(t, err)

	ended, err := s.HasEnded(aid)
	require.NoError(t, err)
	assert.False(t, ended)

	require.NoError(t, s.EndAuction(aid, EndInfo{End: time.Now()}))
	err = s.EndAuction(aid, EndInfo{End: time.Now()})
	assert.ErrorIs(t, err, ErrAlreadyEnded)

	ended, err = s.HasEnded(aid)
	require.NoError(t, err)
	assert.True(t, ended)
}

func TestPlaceBidEnforcesIncreasingValues(t *testing.T) {
	s := newStore(t)
	aid, err := s.CreateAuction(startInfo("123456", 60), nil)
	require.NoError(t, err)

	bid := func(bidder string, value int) (bool, error) {
		return s.PlaceBid(aid, BidRecord{
			Bidder: bidder, Value: value, Time: time.Now(), Elapsed: 1,
		})
	}

	// At or below the start value.
	_, err = bid("654321", 100)
	assert.ErrorIs(t, err, ErrBidRefused)
	_, err = bid("654321", 50)
	assert.ErrorIs(t, err, ErrBidRefused)

	first, err := bid("654321", 150)
	require.NoError(t, err)
	assert.True(t, first)

	_, err = bid("111111", 150)
	assert.ErrorIs(t, err, ErrBidRefused)

	first, err = bid("111111", 200)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = bid("654321", 300)
	require.NoError(t, err)
	assert.False(t, first, "second accepted bid by the same bidder")

	bids, err := s.Bids(aid)
	require.NoError(t, err)
	require.Len(t, bids, 3)
	values := []int{bids[0].Value, bids[1].Value, bids[2].Value}
	assert.Equal(t, []int{150, 200, 300}, values)
	for i := 1; i < len(bids); i++ {
		assert.Greater(t, bids[i].Value, bids[i-1].Value)
	}
}

func TestBidRecordFields(t *testing.T) {
	s := newStore(t)
	aid, err := s.CreateAuction(startInfo("123456", 60), nil)
	require.NoError(t, err)

	now := time.Now().Truncate(time.Second)
	_, err = s.PlaceBid(aid, BidRecord{Bidder: "654321", Value: 150, Time: now, Elapsed: 7})
	require.NoError(t, err)

	bids, err := s.Bids(aid)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, "654321", bids[0].Bidder)
	assert.Equal(t, 150, bids[0].Value)
	assert.Equal(t, 7, bids[0].Elapsed)
	assert.Equal(t, now.Unix(), bids[0].Time.Unix())
}

func TestBiddedLinks(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateUser("654321", "abcdefgh"))
	aid, err := s.CreateAuction(startInfo("123456", 60), nil)
	require.NoError(t, err)

	require.NoError(t, s.AddBidded("654321", aid))
	assert.Error(t, s.AddBidded("654321", aid), "duplicate link")

	bidded, err := s.BiddedAuctions("654321")
	require.NoError(t, err)
	assert.Equal(t, []string{aid}, bidded)
}

func TestErrorCarriesMessage(t *testing.T) {
	err := s0().CreateUser("123456", "abcdefgh")
	require.Error(t, err)
	var dberr *Error
	assert.True(t, errors.As(err, &dberr))
}

// s0 is a store rooted at an unusable path, for failure-path checks.
func s0() *Store {
	return &Store{path: string([]byte{0})}
}
