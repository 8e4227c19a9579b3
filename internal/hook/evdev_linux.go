//go:build linux

package hook

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/holoplot/go-evdev"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/keys"
)

type evdevSource struct {
	path string
	log  logrus.FieldLogger

	mu      sync.Mutex
	dev     *evdev.InputDevice
	done    chan struct{}
	dropped atomic.Int64
}

// NewEvdev returns a Linux source reading /dev/input directly. An empty path
// selects the first keyboard found.
func NewEvdev(path string, log logrus.FieldLogger) Source {
	return &evdevSource{path: path, log: log}
}

// FindKeyboard returns the path of the first device that reports key and
// repeat events and calls itself a keyboard.
func FindKeyboard() (string, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return "", fmt.Errorf("failed to list input devices: %w", err)
	}
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		types := dev.CapableTypes()
		name, nerr := dev.Name()
		if cerr := dev.Close(); cerr != nil {
			// Best-effort close of a device that was only inspected.
			_ = cerr
		}
		if !slices.Contains(types, evdev.EV_KEY) || !slices.Contains(types, evdev.EV_REP) {
			continue
		}
		if nerr != nil || !strings.Contains(strings.ToLower(name), "keyboard") {
			continue
		}
		return p.Path, nil
	}
	return "", fmt.Errorf("no keyboard found")
}

func (e *evdevSource) Dropped() int64 { return e.dropped.Load() }

func (e *evdevSource) Start(ctx context.Context) (<-chan keys.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dev != nil {
		return nil, ErrAlreadyStarted
	}
	path := e.path
	if path == "" {
		found, err := FindKeyboard()
		if err != nil {
			return nil, err
		}
		path = found
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	e.dev = dev
	e.done = make(chan struct{})
	done := e.done

	out := newSink(e.log.WithField("device", path), &e.dropped)
	go func() {
		defer close(done)
		defer close(out.ch)
		for {
			ev, err := dev.ReadOne()
			if err != nil {
				return
			}
			if ev.Type != evdev.EV_KEY {
				continue
			}
			kev := keys.Event{
				Key: keys.RawKey{
					Code:    int(ev.Code),
					Name:    ev.CodeName(),
					Codeset: keys.CodesetNative,
				},
				Time: time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
			}
			switch ev.Value {
			case 0:
			case 1, 2:
				kev.Press = true
			default:
				continue
			}
			out.send(kev)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			if err := e.Stop(); err != nil {
				e.log.WithError(err).Debug("failed to stop evdev listener")
			}
		case <-done:
		}
	}()
	e.log.WithField("device", path).Info("evdev listener started")
	return out.ch, nil
}

func (e *evdevSource) Stop() error {
	e.mu.Lock()
	dev, done := e.dev, e.done
	e.dev, e.done = nil, nil
	e.mu.Unlock()
	if dev == nil {
		return nil
	}
	err := dev.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		e.log.Warn("evdev reader did not exit after close")
	}
	return err
}
