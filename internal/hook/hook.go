// Package hook delivers global keyboard events from OS hooks.
//
// Backends run their own goroutines and never call into the UI. Events are
// handed off through a bounded channel; when it is full they are dropped so
// the OS hook thread never blocks.
package hook

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/generator"
	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/wordlist"
)

// Buffer is the capacity of the event channel.
const Buffer = 256

// Backend names.
const (
	BackendGohook = "gohook"
	BackendEvdev  = "evdev"
	BackendDemo   = "demo"
)

var (
	// ErrAlreadyStarted is returned by Start on a running source.
	ErrAlreadyStarted = errors.New("hook already started")
	// ErrUnsupported is returned when a backend is unavailable on this platform.
	ErrUnsupported = errors.New("hook backend not supported on this platform")
)

// Source produces key events until Stop is called or ctx is done. The
// returned channel is closed when the source stops.
type Source interface {
	Start(ctx context.Context) (<-chan keys.Event, error)
	Stop() error
}

// DropCounter is implemented by sources that count events dropped because
// the consumer fell behind.
type DropCounter interface {
	Dropped() int64
}

// Dropped returns how many events src has dropped, or 0 when it keeps no count.
func Dropped(src Source) int64 {
	if dc, ok := src.(DropCounter); ok {
		return dc.Dropped()
	}
	return 0
}

// Options select and configure a backend.
type Options struct {
	Backend  string
	Device   string
	Script   wordlist.Script
	Interval time.Duration
	Log      logrus.FieldLogger
}

// New returns the Source for opts.Backend.
func New(opts Options) (Source, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("backend", opts.Backend)
	switch opts.Backend {
	case "", BackendGohook:
		return NewGohook(log), nil
	case BackendEvdev:
		return NewEvdev(opts.Device, log), nil
	case BackendDemo:
		return NewDemo(generator.New(), opts.Script, opts.Interval, log), nil
	default:
		return nil, fmt.Errorf("unknown hook backend %q", opts.Backend)
	}
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendGohook, BackendEvdev, BackendDemo}
}

// sink is the non-blocking producer side of the event channel. Drops are
// added to the owning source's counter so they outlive a restart.
type sink struct {
	ch      chan keys.Event
	log     logrus.FieldLogger
	dropped *atomic.Int64
}

func newSink(log logrus.FieldLogger, dropped *atomic.Int64) *sink {
	if dropped == nil {
		dropped = new(atomic.Int64)
	}
	return &sink{ch: make(chan keys.Event, Buffer), log: log, dropped: dropped}
}

func (s *sink) send(ev keys.Event) bool {
	select {
	case s.ch <- ev:
		return true
	default:
		n := s.dropped.Add(1)
		s.log.WithField("dropped", n).Debug("event channel full, dropping key event")
		return false
	}
}
