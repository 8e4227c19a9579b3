package hook

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	gohook "github.com/robotn/gohook"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/keys"
)

type gohookSource struct {
	log logrus.FieldLogger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	dropped atomic.Int64
}

// NewGohook returns a cross-platform source backed by libuiohook.
func NewGohook(log logrus.FieldLogger) Source {
	return &gohookSource{log: log}
}

func (g *gohookSource) Dropped() int64 { return g.dropped.Load() }

func (g *gohookSource) Start(ctx context.Context) (<-chan keys.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop != nil {
		return nil, ErrAlreadyStarted
	}
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	stop, done := g.stop, g.done

	events := gohook.Start()
	out := newSink(g.log, &g.dropped)
	go func() {
		defer close(done)
		defer close(out.ch)
		defer gohook.End()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if kev, ok := convertGohook(ev); ok {
					out.send(kev)
				}
			}
		}
	}()
	g.log.Info("gohook listener started")
	return out.ch, nil
}

func (g *gohookSource) Stop() error {
	g.mu.Lock()
	stop, done := g.stop, g.done
	g.stop, g.done = nil, nil
	g.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

// convertGohook maps uiohook key events. KeyHold is the physical press and
// KeyUp the release; KeyDown carries typed characters and is skipped.
func convertGohook(ev gohook.Event) (keys.Event, bool) {
	var press bool
	switch ev.Kind {
	case gohook.KeyHold:
		press = true
	case gohook.KeyUp:
	default:
		return keys.Event{}, false
	}
	codeset := keys.CodesetNative
	if runtime.GOOS == "windows" {
		codeset = keys.CodesetVK
	}
	return keys.Event{
		Key: keys.RawKey{
			Code:    int(ev.Rawcode),
			Name:    gohook.RawcodetoKeychar(ev.Rawcode),
			Codeset: codeset,
		},
		Press: press,
		Time:  ev.When,
	}, true
}
