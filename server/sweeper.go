package server

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// The sweeper makes lazy ending eager: on every tick it writes END records
// for auctions whose duration has elapsed, so listings converge without
// waiting for a read of the expired auction.

func (s *Server) startSweeper(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweepExpired))
	if err != nil {
		return err
	}
	sched.Start()
	s.sched = sched
	log.Debugf("[SWEEP] running every %v", interval)
	return nil
}

func (s *Server) stopSweeper() {
	if s.sched != nil {
		s.sched.Shutdown()
	}
}

func (s *Server) sweepExpired() {
	aids, err := s.st.AllAuctions()
	if err != nil {
		log.Warnf("[SWEEP] listing auctions: %v", err)
		return
	}
	swept := 0
	for _, aid := range aids {
		ended, err := s.st.HasEnded(aid)
		if err != nil || ended {
			continue
		}
		if ended, err = s.lazyEnd(aid); err != nil {
			log.Warnf("[SWEEP] ending %s: %v", aid, err)
			continue
		}
		if ended {
			swept++
		}
	}
	if swept > 0 {
		log.Debugf("[SWEEP] ended %d expired auction(s)", swept)
	}
}
