package monitoring

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionScheduler deletes old log partitions every night at 00:00
type RetentionScheduler struct {
	sink *FileSink
	days int
	log  *logrus.Logger
	cron *cron.Cron
}

func NewRetentionScheduler(sink *FileSink, days int, log *logrus.Logger) *RetentionScheduler {
	return &RetentionScheduler{
		sink: sink,
		days: days,
		log:  log,
		cron: cron.New(cron.WithSeconds()),
	}
}

// Start registers the nightly job and starts the cron runner.
// A non-positive retention keeps every partition.
func (s *RetentionScheduler) Start() error {
	if s.days <= 0 {
		s.log.Info("monitoring retention disabled")
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 0 * * *", s.RunOnce); err != nil {
		return err
	}

	s.log.WithField("retention_days", s.days).Info("monitoring retention scheduled (nightly at 12:00AM)")
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish
func (s *RetentionScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *RetentionScheduler) RunOnce() {
	cutoff := s.sink.now().AddDate(0, 0, -s.days)
	removed, err := s.sink.Prune(cutoff)
	if err != nil {
		s.log.WithError(err).Error("monitoring retention failed")
		return
	}
	if len(removed) > 0 {
		s.log.WithField("removed", removed).Info("monitoring partitions pruned")
	}
}
