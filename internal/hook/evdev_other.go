//go:build !linux

package hook

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/keycast/internal/keys"
)

type evdevSource struct{}

// NewEvdev is only available on Linux.
func NewEvdev(string, logrus.FieldLogger) Source {
	return evdevSource{}
}

func (evdevSource) Start(context.Context) (<-chan keys.Event, error) {
	return nil, ErrUnsupported
}

func (evdevSource) Stop() error { return nil }
