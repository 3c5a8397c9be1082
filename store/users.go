package store

import (
	"os"
	"path/filepath"
)

// CreateUser registers a brand new user. It fails if the user directory
// already exists; re-registration of a known user goes through SetPassword.
func (s *Store) CreateUser(uid, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return err
	}
	ok, err := exists(s.userPath(uid))
	if err != nil {
		return err
	}
	if ok {
		return dbErr("user already exists", nil)
	}
	for _, p := range []string{s.userPath(uid), s.hostedPath(uid), s.biddedPath(uid)} {
		if err := ensureDir(p); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.passPath(uid), []byte(password), 0o644); err != nil {
		return dbErr("writing password record", err)
	}
	return nil
}

// SetPassword (re)writes the password record of an existing user, turning
// an unregistered user back into a registered one.
func (s *Store) SetPassword(uid, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return err
	}
	if err := os.WriteFile(s.passPath(uid), []byte(password), 0o644); err != nil {
		return dbErr("writing password record", err)
	}
	return nil
}

// UserExists reports whether the user directory exists.
func (s *Store) UserExists(uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return false, err
	}
	return exists(s.userPath(uid))
}

// IsRegistered reports whether a password record is present.
func (s *Store) IsRegistered(uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return false, err
	}
	ok, err := exists(s.userPath(uid))
	if err != nil || !ok {
		return false, err
	}
	return exists(s.passPath(uid))
}

// SetLoggedIn creates the login marker. Idempotent.
func (s *Store) SetLoggedIn(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return err
	}
	if err := os.WriteFile(s.loginPath(uid), []byte("1"), 0o644); err != nil {
		return dbErr("writing login marker", err)
	}
	return nil
}

// IsLoggedIn reports whether the login marker is present.
func (s *Store) IsLoggedIn(uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return false, err
	}
	ok, err := exists(s.userPath(uid))
	if err != nil || !ok {
		return false, err
	}
	return exists(s.loginPath(uid))
}

// ClearLoggedIn removes the login marker. Idempotent.
func (s *Store) ClearLoggedIn(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return err
	}
	return removeIfPresent(s.loginPath(uid))
}

// Password returns the stored password record.
func (s *Store) Password(uid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return "", err
	}
	ok, err := exists(s.userPath(uid))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", dbErr("user does not exist", nil)
	}
	data, err := os.ReadFile(s.passPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return "", dbErr("user is not registered", nil)
		}
		return "", dbErr("reading password record", err)
	}
	return string(data), nil
}

// Unregister removes the password and login markers. The user directory
// and its HOSTED and BIDDED links are retained so past auctions remain
// attributable.
func (s *Store) Unregister(uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBase(); err != nil {
		return err
	}
	ok, err := exists(s.userPath(uid))
	if err != nil {
		return err
	}
	if !ok {
		return dbErr("user does not exist", nil)
	}
	if err := removeIfPresent(s.loginPath(uid)); err != nil {
		return err
	}
	return removeIfPresent(s.passPath(uid))
}

// AddHosted links an auction into the user's HOSTED set. It fails if the
// link already exists.
func (s *Store) AddHosted(uid, aid string) error {
	return s.addLink(uid, aid, s.hostedPath(uid))
}

// AddBidded links an auction into the user's BIDDED set, recording first
// participation as a bidder. It fails if the link already exists.
func (s *Store) AddBidded(uid, aid string) error {
	return s.addLink(uid, aid, s.biddedPath(uid))
}

func (s *Store) addLink(uid, aid, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return err
	}
	if err := s.ensureAuction(aid); err != nil {
		return err
	}
	link := filepath.Join(dir, aid)
	ok, err := exists(link)
	if err != nil {
		return err
	}
	if ok {
		return dbErr("auction already linked on user", nil)
	}
	if err := os.Symlink(s.auctionPath(aid), link); err != nil {
		return dbErr("creating link", err)
	}
	return nil
}

// HostedAuctions returns the AIDs the user hosts, ascending.
func (s *Store) HostedAuctions(uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return nil, err
	}
	return sortedNames(s.hostedPath(uid))
}

// BiddedAuctions returns the AIDs the user has bid on, ascending.
func (s *Store) BiddedAuctions(uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUser(uid); err != nil {
		return nil, err
	}
	return sortedNames(s.biddedPath(uid))
}

func removeIfPresent(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return dbErr("removing "+p, err)
	}
	return nil
}
