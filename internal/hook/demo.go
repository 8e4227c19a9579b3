package hook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/generator"
	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/wordlist"
)

const (
	// DefaultDemoInterval is the hold time of each demo stroke.
	DefaultDemoInterval = 120 * time.Millisecond

	demoWordsPerBatch = 6
	demoShortcutPct   = 0.2
	demoBatchPause    = 2 * time.Second
)

type demoSource struct {
	gen       *generator.Generator
	words     []string
	shortcuts []generator.Stroke
	interval  time.Duration
	pause     time.Duration
	log       logrus.FieldLogger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	dropped atomic.Int64
}

// NewDemo returns a source that types random words and shortcuts from sc. It
// needs no OS permissions and is used for demos and when no hook is available.
func NewDemo(gen *generator.Generator, sc wordlist.Script, interval time.Duration, log logrus.FieldLogger) Source {
	if len(sc.Words) == 0 {
		sc.Words = wordlist.Default().Words
	}
	shortcuts := make([]generator.Stroke, 0, len(sc.Shortcuts))
	for _, combo := range sc.Shortcuts {
		shortcuts = append(shortcuts, generator.Stroke(combo))
	}
	if interval <= 0 {
		interval = DefaultDemoInterval
	}
	if gen == nil {
		gen = generator.New()
	}
	return &demoSource{gen: gen, words: sc.Words, shortcuts: shortcuts, interval: interval, pause: demoBatchPause, log: log}
}

func (d *demoSource) Dropped() int64 { return d.dropped.Load() }

func (d *demoSource) Start(ctx context.Context) (<-chan keys.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return nil, ErrAlreadyStarted
	}
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	stop, done := d.stop, d.done

	out := newSink(d.log, &d.dropped)
	go func() {
		defer close(done)
		defer close(out.ch)
		wait := func(delay time.Duration) bool {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return false
			case <-stop:
				return false
			case <-t.C:
				return true
			}
		}
		for {
			for _, stroke := range d.gen.Script(d.words, d.shortcuts, demoWordsPerBatch, demoShortcutPct) {
				presses, releases := strokeEvents(stroke, time.Now())
				for _, ev := range presses {
					out.send(ev)
				}
				if !wait(d.interval) {
					return
				}
				for _, ev := range releases {
					ev.Time = time.Now()
					out.send(ev)
				}
				if !wait(d.interval / 2) {
					return
				}
			}
			if !wait(d.pause) {
				return
			}
		}
	}()
	d.log.Info("demo listener started")
	return out.ch, nil
}

func (d *demoSource) Stop() error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

// strokeEvents presses the keys of s in order and releases them in reverse.
func strokeEvents(s generator.Stroke, now time.Time) (presses, releases []keys.Event) {
	for _, name := range s {
		presses = append(presses, keys.Event{
			Key:   keys.RawKey{Name: name, Codeset: keys.CodesetNative},
			Press: true,
			Time:  now,
		})
	}
	for i := len(s) - 1; i >= 0; i-- {
		releases = append(releases, keys.Event{
			Key:  keys.RawKey{Name: s[i], Codeset: keys.CodesetNative},
			Time: now,
		})
	}
	return presses, releases
}
