// Package store is the authoritative on-disk state of the auction
// service: users, auctions, bid logs and asset blobs, laid out as a
// directory tree. All public operations serialize on one mutex so the UDP
// worker and every TCP connection worker observe a consistent sequence of
// mutations.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyEnded reports an end mark on an auction that already has one.
	ErrAlreadyEnded = errors.New("auction already ended")

	// ErrBidRefused reports a bid that does not top the current highest
	// value (or the start value when no bids exist).
	ErrBidRefused = errors.New("bid does not top the current highest value")
)

// Error reports an invariant breach or filesystem failure inside the
// store. Handlers translate it into a wire status; it never reaches a
// client structurally.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("database: %s: %v", e.Msg, e.Err)
	}
	return "database: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func dbErr(msg string, err error) error {
	return &Error{Msg: msg, Err: err}
}

// Store owns the tree rooted at path. The zero value is not usable; call
// Open.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open creates the base layout under path (all intermediate directories
// included) and returns the store.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dbErr("resolving root path", err)
	}
	s := &Store{path: abs}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return nil, err
	}
	log.Debugf("[STORE] opened at %s", abs)
	return s, nil
}

// Path returns the absolute root of the tree.
func (s *Store) Path() string {
	return s.path
}

// Wipe removes the whole tree. Meant for tests and operator resets.
func (s *Store) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.RemoveAll(s.path); err != nil {
		return dbErr("wiping tree", err)
	}
	return nil
}

// ensureDir guarantees p is a directory; an existing non-directory is
// fatal.
func ensureDir(p string) error {
	info, err := os.Stat(p)
	if err == nil {
		if !info.IsDir() {
			return dbErr(p+" is not a directory", nil)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return dbErr("inspecting "+p, err)
	}
	if err := os.MkdirAll(p, 0o755); err != nil {
		return dbErr("creating "+p, err)
	}
	return nil
}

func (s *Store) ensureBase() error {
	for _, p := range []string{s.path, s.usersPath(), s.auctionsPath()} {
		if err := ensureDir(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureUser(uid string) error {
	if err := s.ensureBase(); err != nil {
		return err
	}
	for _, p := range []string{s.userPath(uid), s.hostedPath(uid), s.biddedPath(uid)} {
		if err := ensureDir(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ensureAuction(aid string) error {
	if err := s.ensureBase(); err != nil {
		return err
	}
	for _, p := range []string{s.auctionPath(aid), s.bidsPath(aid), s.assetDirPath(aid)} {
		if err := ensureDir(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) usersPath() string {
	return filepath.Join(s.path, "USERS")
}

func (s *Store) auctionsPath() string {
	return filepath.Join(s.path, "AUCTIONS")
}

func (s *Store) userPath(uid string) string {
	return filepath.Join(s.usersPath(), uid)
}

func (s *Store) passPath(uid string) string {
	return filepath.Join(s.userPath(uid), uid+"_pass")
}

func (s *Store) loginPath(uid string) string {
	return filepath.Join(s.userPath(uid), uid+"_login")
}

func (s *Store) hostedPath(uid string) string {
	return filepath.Join(s.userPath(uid), "HOSTED")
}

func (s *Store) biddedPath(uid string) string {
	return filepath.Join(s.userPath(uid), "BIDDED")
}

func (s *Store) auctionPath(aid string) string {
	return filepath.Join(s.auctionsPath(), aid)
}

func (s *Store) startPath(aid string) string {
	return filepath.Join(s.auctionPath(aid), "START_"+aid)
}

func (s *Store) endPath(aid string) string {
	return filepath.Join(s.auctionPath(aid), "END_"+aid)
}

func (s *Store) bidsPath(aid string) string {
	return filepath.Join(s.auctionPath(aid), "BIDS")
}

func (s *Store) assetDirPath(aid string) string {
	return filepath.Join(s.auctionPath(aid), "FILE")
}

// sortedNames lists a directory's entry names in ascending order.
func sortedNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dbErr("listing "+dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	// os.ReadDir returns entries sorted by name already
	return names, nil
}

func exists(p string) (bool, error) {
	_, err := os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, dbErr("inspecting "+p, err)
}
