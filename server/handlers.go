package server

import (
	"crypto/subtle"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	auction "github.com/dfarias/goauction"
	"github.com/dfarias/goauction/store"
)

func encodeOrErr(c auction.Exchange) []byte {
	response, err := c.EncodeResponse()
	if err != nil {
		log.Errorf("[DISPATCH] encoding %s response: %v", c.Opcode(), err)
		return auction.ErrorResponse()
	}
	return response
}

// authenticate runs the full credential check used by the TCP commands:
// the user must exist, be registered, be logged in and present the stored
// password. Comparison is constant time.
func (s *Server) authenticate(uid, password string) (bool, error) {
	registered, err := s.st.IsRegistered(uid)
	if err != nil || !registered {
		return false, err
	}
	loggedIn, err := s.st.IsLoggedIn(uid)
	if err != nil || !loggedIn {
		return false, err
	}
	stored, err := s.st.Password(uid)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil
}

// lazyEnd writes the END record for an auction whose duration has elapsed,
// dated at start + duration, so every observer sees a consistent ended
// state. Reports whether the auction is ended afterwards.
func (s *Server) lazyEnd(aid string) (bool, error) {
	ended, err := s.st.HasEnded(aid)
	if err != nil || ended {
		return ended, err
	}
	start, err := s.st.AuctionStart(aid)
	if err != nil {
		return false, err
	}
	if !start.Expired(time.Now()) {
		return false, nil
	}
	err = s.st.EndAuction(aid, store.EndInfo{End: start.Deadline()})
	if err != nil && !errors.Is(err, store.ErrAlreadyEnded) {
		return false, err
	}
	return true, nil
}

// listState computes the active digit for listings without touching the
// tree.
func (s *Server) listState(aid string) (bool, error) {
	ended, err := s.st.HasEnded(aid)
	if err != nil || ended {
		return false, err
	}
	start, err := s.st.AuctionStart(aid)
	if err != nil {
		return false, err
	}
	return !start.Expired(time.Now()), nil
}

func (s *Server) listStates(aids []string) ([]auction.AuctionState, error) {
	entries := make([]auction.AuctionState, 0, len(aids))
	for _, aid := range aids {
		active, err := s.listState(aid)
		if err != nil {
			return nil, err
		}
		entries = append(entries, auction.AuctionState{AID: aid, Active: active})
	}
	return entries, nil
}

func handleLogin(s *Server, src auction.MessageSource) []byte {
	comm := &auction.Login{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, err := s.login(comm.UID, comm.Password)
	if err != nil {
		log.Errorf("[DISPATCH] login: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status = status
	s.logResult(comm.UID, "login", status)
	return encodeOrErr(comm)
}

func (s *Server) login(uid, password string) (string, error) {
	userExists, err := s.st.UserExists(uid)
	if err != nil {
		return "", err
	}
	if userExists {
		registered, err := s.st.IsRegistered(uid)
		if err != nil {
			return "", err
		}
		if registered {
			stored, err := s.st.Password(uid)
			if err != nil {
				return "", err
			}
			if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
				return auction.StatusNOK, nil
			}
			if err := s.st.SetLoggedIn(uid); err != nil {
				return "", err
			}
			return auction.StatusOK, nil
		}
		// Known directory without a password record: the user unregistered
		// before. Re-register under the new password.
		if err := s.st.SetPassword(uid, password); err != nil {
			return "", err
		}
		if err := s.st.SetLoggedIn(uid); err != nil {
			return "", err
		}
		return auction.StatusREG, nil
	}
	if err := s.st.CreateUser(uid, password); err != nil {
		return "", err
	}
	if err := s.st.SetLoggedIn(uid); err != nil {
		return "", err
	}
	return auction.StatusREG, nil
}

func handleLogout(s *Server, src auction.MessageSource) []byte {
	comm := &auction.Logout{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, err := s.endSession(comm.UID, comm.Password, false)
	if err != nil {
		log.Errorf("[DISPATCH] logout: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status = status
	s.logResult(comm.UID, "logout", status)
	return encodeOrErr(comm)
}

func handleUnregister(s *Server, src auction.MessageSource) []byte {
	comm := &auction.Unregister{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, err := s.endSession(comm.UID, comm.Password, true)
	if err != nil {
		log.Errorf("[DISPATCH] unregister: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status = status
	s.logResult(comm.UID, "unregister", status)
	return encodeOrErr(comm)
}

// endSession implements LOU and UNR, which differ only in whether the
// password record goes away with the login marker.
func (s *Server) endSession(uid, password string, unregister bool) (string, error) {
	registered, err := s.st.IsRegistered(uid)
	if err != nil {
		return "", err
	}
	if !registered {
		return auction.StatusUNR, nil
	}
	loggedIn, err := s.st.IsLoggedIn(uid)
	if err != nil {
		return "", err
	}
	if !loggedIn {
		return auction.StatusNOK, nil
	}
	stored, err := s.st.Password(uid)
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return auction.StatusNOK, nil
	}
	if unregister {
		if err := s.st.Unregister(uid); err != nil {
			return "", err
		}
	} else if err := s.st.ClearLoggedIn(uid); err != nil {
		return "", err
	}
	return auction.StatusOK, nil
}

func handleListUserAuctions(s *Server, src auction.MessageSource) []byte {
	comm := &auction.ListUserAuctions{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, entries, err := s.listUser(comm.UID, s.st.HostedAuctions)
	if err != nil {
		log.Errorf("[DISPATCH] myauctions: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status, comm.Auctions = status, entries
	s.logResult(comm.UID, "myauctions", status)
	return encodeOrErr(comm)
}

func handleListUserBids(s *Server, src auction.MessageSource) []byte {
	comm := &auction.ListUserBids{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, entries, err := s.listUser(comm.UID, s.st.BiddedAuctions)
	if err != nil {
		log.Errorf("[DISPATCH] mybids: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status, comm.Auctions = status, entries
	s.logResult(comm.UID, "mybids", status)
	return encodeOrErr(comm)
}

func (s *Server) listUser(uid string, collect func(string) ([]string, error)) (string, []auction.AuctionState, error) {
	loggedIn, err := s.st.IsLoggedIn(uid)
	if err != nil {
		return "", nil, err
	}
	if !loggedIn {
		return auction.StatusNLG, nil, nil
	}
	aids, err := collect(uid)
	if err != nil {
		return "", nil, err
	}
	if len(aids) == 0 {
		return auction.StatusNOK, nil, nil
	}
	entries, err := s.listStates(aids)
	if err != nil {
		return "", nil, err
	}
	return auction.StatusOK, entries, nil
}

func handleListAllAuctions(s *Server, src auction.MessageSource) []byte {
	comm := &auction.ListAllAuctions{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	aids, err := s.st.AllAuctions()
	if err != nil {
		log.Errorf("[DISPATCH] list: %v", err)
		return auction.ErrorResponse()
	}
	if len(aids) == 0 {
		comm.Status = auction.StatusNOK
	} else {
		entries, err := s.listStates(aids)
		if err != nil {
			log.Errorf("[DISPATCH] list: %v", err)
			return auction.ErrorResponse()
		}
		comm.Status, comm.Auctions = auction.StatusOK, entries
	}
	s.logResult("------", "list", comm.Status)
	return encodeOrErr(comm)
}

func handleShowRecord(s *Server, src auction.MessageSource) []byte {
	comm := &auction.ShowRecord{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	if err := s.showRecord(comm); err != nil {
		log.Errorf("[DISPATCH] show_record: %v", err)
		return auction.ErrorResponse()
	}
	s.logResult("------", "show_record", comm.Status)
	return encodeOrErr(comm)
}

func (s *Server) showRecord(comm *auction.ShowRecord) error {
	known, err := s.st.AuctionExists(comm.AID)
	if err != nil {
		return err
	}
	if !known {
		comm.Status = auction.StatusNOK
		return nil
	}
	ended, err := s.lazyEnd(comm.AID)
	if err != nil {
		return err
	}
	start, err := s.st.AuctionStart(comm.AID)
	if err != nil {
		return err
	}
	bids, err := s.st.Bids(comm.AID)
	if err != nil {
		return err
	}
	comm.Status = auction.StatusOK
	comm.Host = start.Host
	comm.Name = start.Name
	comm.FileName = start.AssetName
	comm.StartValue = start.StartValue
	comm.StartTime = start.Start
	comm.Duration = start.Duration
	for _, bid := range bids {
		comm.Bids = append(comm.Bids, auction.BidEntry{
			Bidder:  bid.Bidder,
			Value:   bid.Value,
			Time:    bid.Time,
			Elapsed: bid.Elapsed,
		})
	}
	if ended {
		end, err := s.st.AuctionEnd(comm.AID)
		if err != nil {
			return err
		}
		comm.HasEnded = true
		comm.EndTime = end.End
		comm.EndElapsed = int(end.End.Sub(start.Start) / time.Second)
	}
	return nil
}

func handleOpenAuction(s *Server, src auction.MessageSource) []byte {
	comm := &auction.OpenAuction{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	ok, err := s.authenticate(comm.UID, comm.Password)
	if err != nil {
		log.Errorf("[DISPATCH] open: %v", err)
		return auction.ErrorResponse()
	}
	if !ok {
		comm.Status = auction.StatusNLG
	} else {
		aid, err := s.openAuction(comm)
		if err != nil {
			// A store refusal becomes a plain NOK; the client never sees the
			// failure structurally.
			log.Warnf("[DISPATCH] open refused: %v", err)
			comm.Status = auction.StatusNOK
		} else {
			comm.Status, comm.AID = auction.StatusOK, aid
		}
	}
	s.logResult(comm.UID, "open", comm.Status)
	return encodeOrErr(comm)
}

func (s *Server) openAuction(comm *auction.OpenAuction) (string, error) {
	aid, err := s.st.CreateAuction(store.StartInfo{
		Host:       comm.UID,
		Name:       comm.Name,
		AssetName:  comm.FileName,
		StartValue: comm.StartValue,
		Duration:   comm.Duration,
		Start:      time.Now(),
	}, comm.FileData)
	if err != nil {
		return "", err
	}
	if err := s.st.AddHosted(comm.UID, aid); err != nil {
		return "", err
	}
	return aid, nil
}

func handleCloseAuction(s *Server, src auction.MessageSource) []byte {
	comm := &auction.CloseAuction{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, err := s.closeAuction(comm.UID, comm.Password, comm.AID)
	if err != nil {
		log.Errorf("[DISPATCH] close: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status = status
	s.logResult(comm.UID, "close", status)
	return encodeOrErr(comm)
}

func (s *Server) closeAuction(uid, password, aid string) (string, error) {
	ok, err := s.authenticate(uid, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return auction.StatusNLG, nil
	}
	known, err := s.st.AuctionExists(aid)
	if err != nil {
		return "", err
	}
	if !known {
		return auction.StatusEAU, nil
	}
	start, err := s.st.AuctionStart(aid)
	if err != nil {
		return "", err
	}
	if start.Host != uid {
		return auction.StatusEOW, nil
	}
	ended, err := s.lazyEnd(aid)
	if err != nil {
		return "", err
	}
	if ended {
		return auction.StatusEND, nil
	}
	err = s.st.EndAuction(aid, store.EndInfo{End: time.Now()})
	if errors.Is(err, store.ErrAlreadyEnded) {
		return auction.StatusEND, nil
	}
	if err != nil {
		return "", err
	}
	return auction.StatusOK, nil
}

func handleShowAsset(s *Server, src auction.MessageSource) []byte {
	comm := &auction.ShowAsset{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	known, err := s.st.AuctionExists(comm.AID)
	if err != nil {
		log.Errorf("[DISPATCH] show_asset: %v", err)
		return auction.ErrorResponse()
	}
	if !known {
		comm.Status = auction.StatusNOK
	} else if name, data, err := s.st.Asset(comm.AID); err != nil {
		log.Warnf("[DISPATCH] show_asset: %v", err)
		comm.Status = auction.StatusNOK
	} else {
		comm.Status = auction.StatusOK
		comm.FileName = name
		comm.FileSize = len(data)
		comm.FileData = data
	}
	s.logResult("------", "show_asset", comm.Status)
	return encodeOrErr(comm)
}

func handleBid(s *Server, src auction.MessageSource) []byte {
	comm := &auction.Bid{}
	if err := comm.DecodeRequest(src); err != nil {
		return auction.ErrorResponse()
	}
	status, err := s.bid(comm.UID, comm.Password, comm.AID, comm.Value)
	if err != nil {
		log.Errorf("[DISPATCH] bid: %v", err)
		return auction.ErrorResponse()
	}
	comm.Status = status
	s.logResult(comm.UID, "bid", status)
	return encodeOrErr(comm)
}

func (s *Server) bid(uid, password, aid string, value int) (string, error) {
	ok, err := s.authenticate(uid, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return auction.StatusNLG, nil
	}
	known, err := s.st.AuctionExists(aid)
	if err != nil {
		return "", err
	}
	if !known {
		return auction.StatusNOK, nil
	}
	ended, err := s.lazyEnd(aid)
	if err != nil {
		return "", err
	}
	if ended {
		return auction.StatusNOK, nil
	}
	start, err := s.st.AuctionStart(aid)
	if err != nil {
		return "", err
	}
	if start.Host == uid {
		return auction.StatusILG, nil
	}
	now := time.Now()
	first, err := s.st.PlaceBid(aid, store.BidRecord{
		Bidder:  uid,
		Value:   value,
		Time:    now,
		Elapsed: int(now.Sub(start.Start) / time.Second),
	})
	if errors.Is(err, store.ErrBidRefused) {
		return auction.StatusREF, nil
	}
	if err != nil {
		return "", err
	}
	if first {
		if err := s.st.AddBidded(uid, aid); err != nil {
			// The link is best effort bookkeeping; a pre-existing link is not
			// a reason to reject an accepted bid.
			log.Warnf("[DISPATCH] bid link for %s on %s: %v", uid, aid, err)
		}
	}
	return auction.StatusACC, nil
}
