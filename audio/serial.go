package audio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tarm/serial"
	"go.uber.org/atomic"
)

type SerialConfig struct {
	Port string
	Baud int
	// Helper is the PCM bridge started while a call is active.
	Helper []string
	// Priority is the SCHED_RR priority of the reader thread, 0 to keep the
	// default policy.
	Priority int
}

// Serial drives the modem's PCM interface over its AT control port.
type Serial struct {
	cfg    SerialConfig
	port   io.ReadWriteCloser
	logger *log.Logger

	active *atomic.Bool
	muted  *atomic.Bool
	closed *atomic.Bool

	mu        sync.Mutex // serialises writes and helper start/stop
	helper    *exec.Cmd
	helperOut chan struct{} // closed once the helper's stdout is drained
	stop      chan struct{}
	done      chan struct{}
}

const (
	// readIdle is how long the reader rests after a read timeout or a read
	// error before trying again.
	readIdle = 100 * time.Millisecond
	// helperDrain bounds the wait for the helper's output after interrupting it.
	helperDrain = 2 * time.Second
)

func OpenSerial(cfg SerialConfig, logger *log.Logger) (*Serial, error) {
	p, err := serial.OpenPort(&serial.Config{Name: cfg.Port, Baud: cfg.Baud, ReadTimeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open audio port %s: %w", cfg.Port, err)
	}
	return NewSerial(p, cfg, logger), nil
}

// NewSerial takes ownership of port and starts the reader loop.
func NewSerial(port io.ReadWriteCloser, cfg SerialConfig, logger *log.Logger) *Serial {
	if logger == nil {
		logger = log.Default()
	}
	s := &Serial{
		cfg:    cfg,
		port:   port,
		logger: logger.With("audio", cfg.Port),
		active: atomic.NewBool(false),
		muted:  atomic.NewBool(false),
		closed: atomic.NewBool(false),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *Serial) readLoop() {
	defer close(s.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if s.cfg.Priority > 0 {
		if err := setRealtime(s.cfg.Priority); err != nil {
			s.logger.Warn("🔊 realtime scheduling unavailable", "err", err)
		}
	}

	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\r')
		if s.closed.Load() {
			return
		}
		if line = strings.TrimSpace(line); line != "" {
			s.logger.Debug("🔊 " + line)
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, os.ErrClosed), errors.Is(err, io.ErrClosedPipe):
			return
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrNoProgress):
			// read timeout with nothing pending
		default:
			s.logger.Warn("🔌 read error", "err", err)
		}
		if !s.rest() {
			return
		}
	}
}

// rest waits readIdle, or returns false once the router is closing.
func (s *Serial) rest() bool {
	select {
	case <-s.stop:
		return false
	case <-time.After(readIdle):
		return true
	}
}

func (s *Serial) send(cmd string) error {
	_, err := s.port.Write([]byte(cmd + "\r"))
	return err
}

func (s *Serial) SetActive(active bool) {
	if !s.active.CompareAndSwap(!active, active) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if active {
		s.startPCM()
	} else {
		s.stopPCM()
	}
}

// must be called with mu held
func (s *Serial) startPCM() {
	if err := s.send("AT+CPCMREG=1"); err != nil {
		s.logger.Warn("🚿 PCM stream start error", "err", err)
		return
	}
	s.logger.Info("🚿 PCM stream started")
	if len(s.cfg.Helper) == 0 || s.helper != nil {
		return
	}
	cmd := exec.Command(s.cfg.Helper[0], s.cfg.Helper[1:]...)
	stdout, _ := cmd.StdoutPipe()
	if err := cmd.Start(); err != nil {
		s.logger.Warn("⚠️ failed to start audio helper", "err", err)
		return
	}
	s.helper = cmd
	s.helperOut = make(chan struct{})
	go func(out chan struct{}) {
		defer close(out)
		if stdout == nil {
			return
		}
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			s.logger.Debug("🔊 " + scanner.Text())
		}
	}(s.helperOut)
}

// must be called with mu held
func (s *Serial) stopPCM() {
	if s.helper != nil && s.helper.Process != nil {
		if err := s.helper.Process.Signal(os.Interrupt); err != nil {
			s.logger.Warn("⚠️ failed to interrupt audio helper", "err", err)
		}
		// Wait closes the pipe, so the scanner has to finish first
		select {
		case <-s.helperOut:
		case <-time.After(helperDrain):
			s.logger.Warn("⚠️ audio helper still writing, killing it")
			_ = s.helper.Process.Kill()
			<-s.helperOut
		}
		if err := s.helper.Wait(); err != nil {
			s.logger.Warn("⚠️ audio helper exited with error", "err", err)
		}
		s.helper = nil
		s.helperOut = nil
	}
	if err := s.send("AT+CPCMREG=0"); err != nil {
		s.logger.Warn("🚿 PCM stream stop error", "err", err)
		return
	}
	s.logger.Info("🚿 PCM stream stopped")
}

func (s *Serial) SetMute(mute bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := 0
	if mute {
		v = 1
	}
	if err := s.send(fmt.Sprintf("AT+CMUT=%d", v)); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	s.muted.Store(mute)
	return nil
}

func (s *Serial) Muted() bool {
	return s.muted.Load()
}

func (s *Serial) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stop)
	s.SetActive(false)
	err := s.port.Close()
	<-s.done
	return err
}
