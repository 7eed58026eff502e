package session

import (
	"context"
	"time"

	"github.com/nedpals/mfulc/nfc"
)

// Poller repeats sessions on one device.
type Poller struct {
	Controller *Controller

	// Interval between sessions. Zero runs exactly one session.
	Interval time.Duration

	Clock nfc.Clock
}

// Run runs sessions until ctx is cancelled, or once when Interval is zero.
// Each session releases its tag before the next discovery starts. Run returns
// the first fatal session error; dev stays open for the caller to close.
func (p *Poller) Run(ctx context.Context, dev nfc.Device) error {
	clock := p.Clock
	if clock == nil {
		clock = nfc.NewRealClock()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if _, err := p.Controller.Run(dev); err != nil {
			return err
		}
		if p.Interval <= 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-clock.After(p.Interval):
		}
	}
}
