package main

import (
	"context"
	"errors"
	"time"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

// pollStatus runs all status queries once and reports whether the radio is
// transmitting. A radio that is receiving has no TX status to report, that is
// not an error.
func pollStatus(s *cat.Session) (transmitting bool, err error) {
	if _, err = s.GetFrequencyMode(); err != nil {
		return
	}
	if _, err = s.GetRxStatus(); err != nil {
		return
	}
	tx, err := s.GetTxStatus()
	switch {
	case errors.Is(err, cat.ErrTxStatusUnavailable):
		return false, nil
	case err != nil:
		return false, err
	}
	return tx.PTT, nil
}

// refreshStatusLine polls s and regenerates the status line. The TX/RX state
// only changes on a successful poll; the last known one is returned.
func refreshStatusLine(s *cat.Session, sl *statusLogStruct, transmitting bool) bool {
	if tx, err := pollStatus(s); err != nil {
		log.Debug("status poll failed: ", err)
	} else {
		transmitting = tx
	}
	sl.reportStatus(s.Status(), s.State(), transmitting)
	sl.update()
	return transmitting
}

// watch polls the transceiver every interval and redraws the status line
// until ctx is done. Failed polls are logged and retried on the next tick.
func watch(ctx context.Context, s *cat.Session, interval time.Duration) error {
	statusLog.start()
	defer statusLog.stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var transmitting bool
	for {
		transmitting = refreshStatusLine(s, &statusLog, transmitting)
		statusLog.print()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
