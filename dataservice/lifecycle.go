package dataservice

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// connectRetryInterval is the fixed backoff between connect attempts.
const connectRetryInterval = time.Second

// Connect establishes the adapter connection, retrying every second until
// it succeeds. Connection establishment is never abandoned automatically;
// each failure is reported before the next attempt. After a successful
// connect the optional AfterConnect hook runs once; a hook failure is
// logged but does not fail the connect sequence.
func (s *Service) Connect(ctx context.Context) error {
	operation := func() error {
		return s.adapter.Connect(ctx)
	}
	notify := func(err error, next time.Duration) {
		s.logger.Error().
			Err(err).
			Str("service", s.settings.Name).
			Dur("retry_in", next).
			Msg("adapter connect failed, retrying")
	}
	if err := backoff.RetryNotify(operation, backoff.NewConstantBackOff(connectRetryInterval), notify); err != nil {
		return err
	}

	s.logger.Info().Str("service", s.settings.Name).Msg("adapter connected")

	if s.settings.AfterConnect != nil {
		if err := s.settings.AfterConnect(ctx); err != nil {
			s.logger.Error().
				Err(err).
				Str("service", s.settings.Name).
				Msg("after-connect hook failed")
		}
	}
	return nil
}

// Disconnect releases the adapter connection.
func (s *Service) Disconnect(ctx context.Context) error {
	return s.adapter.Disconnect(ctx)
}
