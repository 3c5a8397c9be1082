package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// maxAuctions bounds the 3-digit identifier space.
const maxAuctions = 999

// StartInfo is the single-line start record of an auction.
type StartInfo struct {
	Host       string
	Name       string
	AssetName  string
	StartValue int
	Duration   int // seconds
	Start      time.Time
}

// Expired reports whether the activity window has elapsed at now.
func (i StartInfo) Expired(now time.Time) bool {
	return !now.Before(i.Start.Add(time.Duration(i.Duration) * time.Second))
}

// Deadline is the instant the activity window closes.
func (i StartInfo) Deadline() time.Time {
	return i.Start.Add(time.Duration(i.Duration) * time.Second)
}

// EndInfo is the single-line end record of an auction.
type EndInfo struct {
	End time.Time
}

// BidRecord is one line of the bid log.
type BidRecord struct {
	Bidder  string
	Value   int
	Time    time.Time
	Elapsed int // seconds since auction start
}

func (i StartInfo) marshal() string {
	return fmt.Sprintf("%s %s %s %d %d %s %d",
		i.Host, i.Name, i.AssetName, i.StartValue, i.Duration,
		i.Start.Format(dateTimeLayout), i.Start.Unix())
}

func parseStartInfo(line string) (StartInfo, error) {
	fields := strings.Fields(line)
	if len(fields) != 8 {
		return StartInfo{}, dbErr("malformed start record", nil)
	}
	value, err := strconv.Atoi(fields[3])
	if err != nil {
		return StartInfo{}, dbErr("malformed start value", err)
	}
	duration, err := strconv.Atoi(fields[4])
	if err != nil {
		return StartInfo{}, dbErr("malformed duration", err)
	}
	epoch, err := strconv.ParseInt(fields[7], 10, 64)
	if err != nil {
		return StartInfo{}, dbErr("malformed start time", err)
	}
	return StartInfo{
		Host:       fields[0],
		Name:       fields[1],
		AssetName:  fields[2],
		StartValue: value,
		Duration:   duration,
		Start:      time.Unix(epoch, 0),
	}, nil
}

func (i EndInfo) marshal() string {
	return fmt.Sprintf("%s %d", i.End.Format(dateTimeLayout), i.End.Unix())
}

func parseEndInfo(line string) (EndInfo, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return EndInfo{}, dbErr("malformed end record", nil)
	}
	epoch, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return EndInfo{}, dbErr("malformed end time", err)
	}
	return EndInfo{End: time.Unix(epoch, 0)}, nil
}

func (b BidRecord) marshal() string {
	return fmt.Sprintf("%s %d %s %d",
		b.Bidder, b.Value, b.Time.Format(dateTimeLayout), b.Elapsed)
}

func parseBidRecord(line string) (BidRecord, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return BidRecord{}, dbErr("malformed bid record", nil)
	}
	value, err := strconv.Atoi(fields[1])
	if err != nil {
		return BidRecord{}, dbErr("malformed bid value", err)
	}
	elapsed, err := strconv.Atoi(fields[4])
	if err != nil {
		return BidRecord{}, dbErr("malformed bid elapsed time", err)
	}
	t, err := time.ParseInLocation(dateTimeLayout, fields[2]+" "+fields[3], time.Local)
	if err != nil {
		return BidRecord{}, dbErr("malformed bid time", err)
	}
	return BidRecord{Bidder: fields[0], Value: value, Time: t, Elapsed: elapsed}, nil
}

// CreateAuction allocates the next AID (1 + the current maximum, zero
// padded), persists the start record and the asset blob, all under one
// lock acquisition so allocation is race free. The returned AID is final.
func (s *Store) CreateAuction(info StartInfo, asset []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return "", err
	}
	aids, err := sortedNames(s.auctionsPath())
	if err != nil {
		return "", err
	}
	next := 1
	if len(aids) > 0 {
		max, err := strconv.Atoi(aids[len(aids)-1])
		if err != nil {
			return "", dbErr("malformed auction identifier "+aids[len(aids)-1], err)
		}
		next = max + 1
	}
	if next > maxAuctions {
		return "", dbErr("auction identifier space exhausted", nil)
	}
	aid := fmt.Sprintf("%03d", next)
	for _, p := range []string{s.auctionPath(aid), s.bidsPath(aid), s.assetDirPath(aid)} {
		if err := ensureDir(p); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(s.startPath(aid), []byte(info.marshal()), 0o644); err != nil {
		return "", dbErr("writing start record", err)
	}
	if err := os.WriteFile(filepath.Join(s.assetDirPath(aid), info.AssetName), asset, 0o644); err != nil {
		return "", dbErr("writing asset blob", err)
	}
	return aid, nil
}

// AuctionExists reports whether the auction directory exists.
func (s *Store) AuctionExists(aid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return false, err
	}
	return exists(s.auctionPath(aid))
}

// AuctionStart returns the start record.
func (s *Store) AuctionStart(aid string) (StartInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return StartInfo{}, err
	}
	data, err := os.ReadFile(s.startPath(aid))
	if err != nil {
		return StartInfo{}, dbErr("auction has not started", err)
	}
	return parseStartInfo(string(data))
}

// EndAuction persists the end record. It fails with ErrAlreadyEnded when
// one is already present.
func (s *Store) EndAuction(aid string, info EndInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return err
	}
	ok, err := exists(s.endPath(aid))
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyEnded
	}
	if err := os.WriteFile(s.endPath(aid), []byte(info.marshal()), 0o644); err != nil {
		return dbErr("writing end record", err)
	}
	return nil
}

// HasEnded reports whether an end record exists.
func (s *Store) HasEnded(aid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return false, err
	}
	return exists(s.endPath(aid))
}

// AuctionEnd returns the end record.
func (s *Store) AuctionEnd(aid string) (EndInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return EndInfo{}, err
	}
	data, err := os.ReadFile(s.endPath(aid))
	if err != nil {
		return EndInfo{}, dbErr("auction has not ended", err)
	}
	return parseEndInfo(string(data))
}

// AllAuctions returns every persisted AID, ascending.
func (s *Store) AllAuctions() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return nil, err
	}
	return sortedNames(s.auctionsPath())
}

// Asset returns the asset blob and its file name.
func (s *Store) Asset(aid string) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return "", nil, err
	}
	names, err := sortedNames(s.assetDirPath(aid))
	if err != nil {
		return "", nil, err
	}
	if len(names) != 1 {
		return "", nil, dbErr("auction has no asset blob", nil)
	}
	data, err := os.ReadFile(filepath.Join(s.assetDirPath(aid), names[0]))
	if err != nil {
		return "", nil, dbErr("reading asset blob", err)
	}
	return names[0], data, nil
}

// PlaceBid appends a bid to the auction's log. The next-bid check reads
// the current maximum and writes the new record before the lock is
// released, so recorded values are strictly increasing across workers.
// ErrBidRefused is returned when the value does not top the highest
// existing bid, or the start value when no bids exist. The first return
// reports whether this is the bidder's first accepted bid on the auction.
func (s *Store) PlaceBid(aid string, bid BidRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return false, err
	}
	start, err := s.readStart(aid)
	if err != nil {
		return false, err
	}
	bids, err := s.readBids(aid)
	if err != nil {
		return false, err
	}
	floor := start.StartValue
	if len(bids) > 0 {
		floor = bids[len(bids)-1].Value
	}
	if bid.Value <= floor {
		return false, ErrBidRefused
	}
	first := true
	for _, prior := range bids {
		if prior.Bidder == bid.Bidder {
			first = false
			break
		}
	}
	name := fmt.Sprintf("%06d", bid.Value)
	if err := os.WriteFile(filepath.Join(s.bidsPath(aid), name), []byte(bid.marshal()), 0o644); err != nil {
		return false, dbErr("writing bid record", err)
	}
	return first, nil
}

// Bids returns the auction's bid log in ascending value order.
func (s *Store) Bids(aid string) ([]BidRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureAuction(aid); err != nil {
		return nil, err
	}
	return s.readBids(aid)
}

// readStart and readBids expect the lock to be held.
func (s *Store) readStart(aid string) (StartInfo, error) {
	data, err := os.ReadFile(s.startPath(aid))
	if err != nil {
		return StartInfo{}, dbErr("auction has not started", err)
	}
	return parseStartInfo(string(data))
}

func (s *Store) readBids(aid string) ([]BidRecord, error) {
	names, err := sortedNames(s.bidsPath(aid))
	if err != nil {
		return nil, err
	}
	bids := make([]BidRecord, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.bidsPath(aid), name))
		if err != nil {
			return nil, dbErr("reading bid record "+name, err)
		}
		bid, err := parseBidRecord(string(data))
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, nil
}
