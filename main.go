package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/davidus-sk/Yaesu-Pi/cat"
	"github.com/davidus-sk/Yaesu-Pi/rigsim"
)

const (
	exitOK          = 0
	exitUsage       = 1
	exitUnavailable = 2
	exitFailed      = 3
)

func getAboutStr() string {
	return "yaesu-cat - CAT control for Yaesu FT-817/818/857/897 transceivers"
}

func main() {
	parseArgs()
	log.Init()
	code := run()
	log.Sync()
	os.Exit(code)
}

func run() (code int) {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	g, ctx := errgroup.WithContext(ctx)

	var closers []func() error
	defer func() {
		cancel()
		err := g.Wait()
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
		if err != nil {
			log.Error(err)
			if code == exitOK {
				code = exitFailed
			}
		}
	}()

	device := devicePath
	if emulate {
		sim, err := rigsim.NewPTYServer(rigsim.New(), log.logger)
		if err != nil {
			log.Error("can't start simulator: ", err)
			return exitUnavailable
		}
		closers = append(closers, sim.Close)
		if device, err = sim.Path(); err != nil {
			log.Error("can't start simulator: ", err)
			return exitUnavailable
		}
		g.Go(func() error { return sim.Serve(ctx) })
		log.Printf("simulated transceiver on %s", device)
	} else if err := checkDevicePath(device); err != nil {
		log.Error(err)
		return exitUnavailable
	}

	session := cat.NewSession(
		cat.WithLogger(log.logger),
		cat.WithReplyTimeout(replyTimeout),
		cat.WithPacketDebug(debugPackets),
	)
	if err := session.Connect(device, baudRate); err != nil {
		log.Error(err)
		return exitUnavailable
	}
	closers = append(closers, session.Close)

	if err := session.Probe(); err != nil {
		if errors.Is(err, cat.ErrNoReply) {
			log.Errorf("transceiver is not responding, check power and that it is set to %d baud: %v", baudRate, err)
			return exitUnavailable
		}
		log.Error(err)
		return exitFailed
	}

	if err := applyCommands(session); err != nil {
		log.Error(err)
		return exitFailed
	}

	if showStatus {
		_, err := pollStatus(session)
		out, jsonErr := session.Status().JSON()
		if jsonErr != nil {
			log.Error(jsonErr)
			return exitFailed
		}
		fmt.Println(out)
		if err != nil {
			log.Error(err)
			return exitFailed
		}
	}

	if watchEvery > 0 {
		g.Go(func() error { return watch(ctx, session, watchEvery) })
		<-ctx.Done()
	}
	return exitOK
}

// applyCommands sends the requested commands, PTT last so the radio is set
// up before it transmits.
func applyCommands(s *cat.Session) error {
	if setLock != nil {
		if err := s.Lock(*setLock); err != nil {
			return err
		}
	}
	if setMode != "" {
		if err := s.SetMode(setMode); err != nil {
			return err
		}
	}
	if setFrequency > 0 {
		if err := s.SetFrequency(setFrequency); err != nil {
			return err
		}
	}
	if setSplit != nil {
		if err := s.Split(*setSplit); err != nil {
			return err
		}
	}
	if setClar != nil {
		if err := s.Clarifier(*setClar); err != nil {
			return err
		}
	}
	if toggleVFO {
		if err := s.ToggleVFO(); err != nil {
			return err
		}
	}
	if setPTT != nil {
		if err := s.PTT(*setPTT); err != nil {
			return err
		}
	}
	return nil
}
