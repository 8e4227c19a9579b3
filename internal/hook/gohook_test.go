package hook

import (
	"testing"
	"time"

	gohook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
)

func TestConvertGohook(t *testing.T) {
	t.Parallel()

	when := time.Unix(5, 0)
	ev, ok := convertGohook(gohook.Event{Kind: gohook.KeyHold, Rawcode: 65, When: when})
	assert.True(t, ok)
	assert.True(t, ev.Press)
	assert.Equal(t, 65, ev.Key.Code)
	assert.Equal(t, when, ev.Time)

	ev, ok = convertGohook(gohook.Event{Kind: gohook.KeyUp, Rawcode: 65})
	assert.True(t, ok)
	assert.False(t, ev.Press)

	_, ok = convertGohook(gohook.Event{Kind: gohook.KeyDown, Keychar: 'a'})
	assert.False(t, ok, "typed characters are not key transitions")

	_, ok = convertGohook(gohook.Event{Kind: gohook.MouseDown})
	assert.False(t, ok)
}
