package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nedpals/mfulc/nfc"
)

// State is a step of the per-tag session state machine.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateIdentifying
	StateAuthenticating
	StateActing
	StateReleasing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateIdentifying:
		return "identifying"
	case StateAuthenticating:
		return "authenticating"
	case StateActing:
		return "acting"
	case StateReleasing:
		return "releasing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome describes one finished session.
type Outcome struct {
	ID     string
	Time   time.Time
	Action Action

	// Found is false when discovery returned no tag.
	Found    bool
	Identity nfc.TagIdentity

	Authenticated bool
	AuthErr       error

	Info   *Info
	Report *TransferReport

	// Err is a session-local failure: discovery, connect or action errors.
	Err error

	// States is the path taken through the state machine, ending in StateIdle.
	States []State
}

func (o *Outcome) enter(s State) {
	o.States = append(o.States, s)
}

// EventSink receives every session that found a tag.
type EventSink interface {
	Publish(Outcome)
}

// Controller owns one tag for the duration of a session.
type Controller struct {
	Config Config
	Engine *Engine

	// Out receives progress lines; Discard for quiet runs.
	Out Printer
	// Log receives errors and warnings regardless of quiet mode.
	Log *log.Logger
	// Report receives the info report, which is always printed.
	Report io.Writer

	// Events, if set, is notified after each released tag.
	Events EventSink
	// OnTag, if set, is called with the identity of each supported tag.
	OnTag func(nfc.TagIdentity)

	Clock nfc.Clock
}

// NewController returns a Controller writing progress to out and errors to logger.
func NewController(cfg Config, out Printer, logger *log.Logger) *Controller {
	return &Controller{
		Config: cfg,
		Engine: NewEngine(out),
		Out:    out,
		Log:    logger,
		Report: os.Stdout,
		Clock:  nfc.NewRealClock(),
	}
}

func (c *Controller) printer() Printer {
	if c.Out == nil {
		return Discard
	}
	return c.Out
}

func (c *Controller) logger() *log.Logger {
	if c.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return c.Log
}

func (c *Controller) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

// Run executes one session on dev. The returned error is non-nil only for
// failures that must end the process, such as an unopenable dump file or a
// closed device. Everything else is recorded in the Outcome.
func (c *Controller) Run(dev nfc.Device) (out Outcome, err error) {
	out = Outcome{ID: uuid.NewString(), Time: c.now(), Action: c.Config.Action}
	p := c.printer()

	out.enter(StateDiscovering)
	p.Printf("waiting for tag...\n")
	tag, derr := dev.Discover()
	if derr != nil {
		out.enter(StateIdle)
		if nfc.IsDeviceClosedError(derr) {
			return out, derr
		}
		c.logger().Printf("tag discovery failed: %v", derr)
		out.Err = derr
		return out, nil
	}
	if tag == nil {
		out.enter(StateIdle)
		return out, nil
	}

	out.Found = true
	defer func() {
		out.enter(StateReleasing)
		if rerr := tag.Disconnect(); rerr != nil {
			c.logger().Printf("releasing tag %s: %v", out.Identity.UID, rerr)
		}
		out.enter(StateIdle)
		if c.Events != nil {
			c.Events.Publish(out)
		}
	}()

	out.enter(StateIdentifying)
	out.Identity = nfc.Identify(tag)
	p.Printf("UID:  %s\n", out.Identity.UID)
	p.Printf("Type: %s\n", out.Identity.Type)
	if !out.Identity.Kind.Supported() {
		p.Printf("not an ultralight card\n")
		return out, nil
	}
	if c.OnTag != nil {
		c.OnTag(out.Identity)
	}

	if cerr := tag.Connect(); cerr != nil {
		c.logger().Printf("error connecting to tag: %v", cerr)
		out.Err = cerr
		return out, nil
	}
	p.Printf("connected to tag\n")

	if out.Identity.Kind == nfc.KindUltralightC {
		out.enter(StateAuthenticating)
		c.authenticate(tag, &out)
	}

	out.enter(StateActing)
	aerr := c.act(tag, &out)
	return out, aerr
}

// authenticate is best effort: a failure is reported and the session goes on,
// since unprotected pages stay readable.
func (c *Controller) authenticate(tag nfc.UltralightTag, out *Outcome) {
	p := c.printer()
	key, isDefault := c.Config.key()
	if isDefault {
		p.Printf("authenticating using default key\n")
	} else {
		p.Printf("authenticating using key: %s\n", key)
	}

	if err := tag.Authenticate(key); err != nil {
		out.AuthErr = err
		c.logger().Printf("authentication failed: %v", err)
		p.Printf("authentication failed. Your actions might fail as well.\n")
		return
	}
	out.Authenticated = true
	p.Printf("authentication succeeded.\n")
}

func (c *Controller) act(tag nfc.UltralightTag, out *Outcome) error {
	switch c.Config.Action {
	case ActionInfo:
		info := CollectInfo(tag, out.Identity)
		if _, isDefault := c.Config.key(); isDefault && out.Identity.Kind == nfc.KindUltralightC {
			accepted := out.Authenticated
			info.DefaultKeyAccepted = &accepted
		}
		out.Info = &info
		w := c.Report
		if w == nil {
			w = os.Stdout
		}
		if _, err := info.WriteTo(w); err != nil {
			out.Err = err
			c.logger().Printf("writing tag info: %v", err)
		}
		return nil

	case ActionRead, ActionWrite:
		engine := c.Engine
		if engine == nil {
			engine = NewEngine(c.printer())
		}
		mode := ModeRead
		if c.Config.Action == ActionWrite {
			mode = ModeWrite
		}
		report, err := engine.Transfer(tag, c.Config.Range, c.Config.Target, mode, c.Config.Override)
		out.Report = &report
		if err != nil {
			out.Err = err
			if errors.Is(err, ErrOpenTarget) || errors.Is(err, ErrInvalidRange) {
				return err
			}
			c.logger().Printf("%s failed: %v", c.Config.Action, err)
		}
		return nil

	default:
		return nil
	}
}
