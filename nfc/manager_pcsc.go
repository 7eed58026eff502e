package nfc

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/nedpals/mfulc/internal/syncutil"
)

// scardContext is the subset of *scard.Context used by the PC/SC backend.
type scardContext interface {
	ListReaders() ([]string, error)
	GetStatusChange(states []scard.ReaderState, timeout time.Duration) error
	Connect(reader string) (scardCard, error)
	Release() error
}

// scardCard is the subset of *scard.Card used by the PC/SC backend.
type scardCard interface {
	Transmit(cmd []byte) ([]byte, error)
	Status() (*scard.CardStatus, error)
	Disconnect(d scard.Disposition) error
}

// liveContext adapts *scard.Context to scardContext.
type liveContext struct {
	*scard.Context
}

// Connect uses a shared connection so other applications keep access to the reader.
func (c liveContext) Connect(reader string) (scardCard, error) {
	card, err := c.Context.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// pcscManager implements Manager using PC/SC via ebfe/scard
type pcscManager struct {
	ctx   scardContext
	ctxMu syncutil.Mutex

	establish func() (scardContext, error)
}

// newPCSCManager creates a new PC/SC manager
func newPCSCManager() *pcscManager {
	return &pcscManager{establish: establishContext}
}

func establishContext() (scardContext, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, err
	}
	return liveContext{ctx}, nil
}

// ensureContext returns a valid PC/SC context, re-establishing it when the
// service was restarted since the last call.
func (m *pcscManager) ensureContext() (scardContext, error) {
	m.ctxMu.Lock()
	defer m.ctxMu.Unlock()

	if m.ctx != nil {
		if _, err := m.ctx.ListReaders(); err == nil || errors.Is(err, scard.ErrNoReadersAvailable) {
			return m.ctx, nil
		}
		m.ctx.Release()
		m.ctx = nil
	}

	ctx, err := m.establish()
	if err != nil {
		return nil, fmt.Errorf("failed to establish PC/SC context: %w", err)
	}
	m.ctx = ctx
	return ctx, nil
}

// ListDevices lists available PC/SC readers
func (m *pcscManager) ListDevices() ([]string, error) {
	return enumerate("ListDevices", func() ([]string, error) {
		ctx, err := m.ensureContext()
		if err != nil {
			return nil, err
		}
		readers, err := ctx.ListReaders()
		if errors.Is(err, scard.ErrNoReadersAvailable) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return filterContactlessReaders(readers), nil
	})
}

// OpenDevice binds a reader by name. Cards are connected per Discover call.
func (m *pcscManager) OpenDevice(readerName string) (Device, error) {
	ctx, err := m.ensureContext()
	if err != nil {
		return nil, WrapError(ErrCodeOpenFailed, "OpenDevice", "PC/SC unavailable", err)
	}
	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, WrapError(ErrCodeOpenFailed, "OpenDevice", "failed to list readers", err)
	}
	for _, r := range readers {
		if r == readerName {
			return newPCSCDevice(ctx, readerName), nil
		}
	}
	return nil, Errorf(ErrCodeOpenFailed, "OpenDevice", "reader %q not found", readerName)
}

func (m *pcscManager) Version() string {
	return "PC/SC"
}

// Release releases the PC/SC context
func (m *pcscManager) Release() error {
	m.ctxMu.Lock()
	defer m.ctxMu.Unlock()

	if m.ctx != nil {
		err := m.ctx.Release()
		m.ctx = nil
		return err
	}
	return nil
}

// filterContactlessReaders drops SAM slots, which share a USB device with
// the contactless interface on dual readers.
func filterContactlessReaders(readers []string) []string {
	var filtered []string
	for _, r := range readers {
		if strings.Contains(strings.ToUpper(r), "SAM") {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
