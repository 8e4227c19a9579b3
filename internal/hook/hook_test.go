package hook

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keycast/internal/generator"
	"github.com/verte-zerg/keycast/internal/keys"
	"github.com/verte-zerg/keycast/internal/wordlist"
)

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestSinkDropsWhenFull(t *testing.T) {
	t.Parallel()

	var dropped atomic.Int64
	s := newSink(quietLogger(), &dropped)
	for i := 0; i < Buffer; i++ {
		require.True(t, s.send(keys.Event{}))
	}
	assert.False(t, s.send(keys.Event{}))
	assert.Equal(t, int64(1), dropped.Load())
	assert.Len(t, s.ch, Buffer)
}

func TestDroppedReportsSourceCount(t *testing.T) {
	t.Parallel()

	src := NewDemo(generator.NewSeeded(1), wordlist.Script{Words: []string{"ab"}}, time.Microsecond, quietLogger())
	src.(*demoSource).pause = time.Microsecond
	_, err := src.Start(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Stop()) }()

	assert.Eventually(t, func() bool { return Dropped(src) > 0 }, 5*time.Second, 5*time.Millisecond)
	assert.Zero(t, Dropped(stubSource{}))
}

type stubSource struct{}

func (stubSource) Start(context.Context) (<-chan keys.Event, error) { return nil, nil }
func (stubSource) Stop() error                                      { return nil }

func TestStrokeEventsOrder(t *testing.T) {
	t.Parallel()

	now := time.Unix(100, 0)
	presses, releases := strokeEvents(generator.Stroke{"ctrl", "shift", "t"}, now)
	require.Len(t, presses, 3)
	require.Len(t, releases, 3)
	assert.Equal(t, "ctrl", presses[0].Key.Name)
	assert.True(t, presses[2].Press)
	assert.Equal(t, "t", releases[0].Key.Name)
	assert.Equal(t, "ctrl", releases[2].Key.Name)
	assert.False(t, releases[0].Press)
}

func TestDemoSourceDeliversAndStops(t *testing.T) {
	t.Parallel()

	src := NewDemo(generator.NewSeeded(1), wordlist.Script{Words: []string{"ab"}}, time.Millisecond, quietLogger())
	ch, err := src.Start(context.Background())
	require.NoError(t, err)

	_, err = src.Start(context.Background())
	require.ErrorIs(t, err, ErrAlreadyStarted)

	norm := keys.NewNormalizer(0)
	sawB := false
	deadline := time.After(5 * time.Second)
	for !sawB {
		select {
		case ev := <-ch:
			if ev.Press && norm.Normalize(ev.Key) == "b" {
				sawB = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for demo events")
		}
	}
	require.NoError(t, src.Stop())
	for range ch {
	}
	require.NoError(t, src.Stop())
}

func TestDemoSourceStopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	src := NewDemo(nil, wordlist.Script{}, time.Millisecond, quietLogger())
	ch, err := src.Start(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case <-drain(ch):
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Backend: "carrier-pigeon", Log: quietLogger()})
	require.Error(t, err)

	src, err := New(Options{Backend: BackendDemo, Log: quietLogger()})
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func drain(ch <-chan keys.Event) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}
