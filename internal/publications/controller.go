package publications

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matsen/labpage/internal/bibtex"
	"github.com/matsen/labpage/internal/dom"
)

// ErrSuperseded is returned by Select when a newer selection started before
// this one finished. Its response was discarded.
var ErrSuperseded = errors.New("filter selection superseded")

// Controller owns the publications section of one document and applies filter
// button selections to it. The newest selection always wins: starting one
// cancels the fetch of any selection still in flight.
type Controller struct {
	loader   *Loader
	renderer Renderer
	logger   *zap.Logger

	mu     sync.Mutex
	doc    *dom.Document
	state  FilterState
	seq    uint64
	cancel context.CancelFunc
}

// NewController creates a controller for doc. A nil logger disables logging.
func NewController(doc *dom.Document, loader *Loader, renderer Renderer, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		loader:   loader,
		renderer: renderer,
		logger:   logger,
		doc:      doc,
		state:    NewFilterState(),
	}
}

// Select switches the active filter: the buttons restyle and the container
// slides up and empties at once, then the bibliography is fetched again and
// the container refilled and slid down.
//
// Fetch failures leave the container empty; the error is logged and
// returned. A selection overtaken by a newer one returns ErrSuperseded and
// leaves the document to the newer selection.
func (c *Controller) Select(ctx context.Context, keyword string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.seq++
	seq := c.seq
	c.cancel = cancel
	c.state = c.state.WithActive(keyword)
	loader := c.loader

	container, err := c.doc.MustElementByID(ContainerID)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	StyleButtons(c.doc, keyword)
	c.doc.SlideUp(container, dom.Animated)
	c.doc.Empty(container)
	c.mu.Unlock()

	entries, loadErr := loader.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("discarding superseded filter response", zap.String("keyword", keyword))
		return ErrSuperseded
	}
	c.cancel = nil

	if loadErr != nil && !errors.Is(loadErr, bibtex.ErrUnterminated) {
		c.logger.Warn("loading bibliography", zap.String("source", loader.Source()), zap.Error(loadErr))
		c.doc.SlideDown(container, dom.Animated)
		return loadErr
	}
	if loadErr != nil {
		c.logger.Warn("bibliography truncated, rendering partial list", zap.Error(loadErr))
	}

	if err := c.renderer.Show(c.doc, entries, c.state); err != nil {
		return fmt.Errorf("rendering publications: %w", err)
	}
	c.doc.SlideDown(container, dom.Animated)
	c.logger.Debug("filter applied", zap.String("keyword", keyword), zap.Int("entries", len(entries)))
	return nil
}

// ToggleAbstract opens or closes one abstract panel.
func (c *Controller) ToggleAbstract(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.ToggleAbstract(c.doc, &c.state, id)
}

// State returns a copy of the current filter state.
func (c *Controller) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := FilterState{Active: c.state.Active}
	if len(c.state.OpenAbstracts) > 0 {
		s.OpenAbstracts = make(map[string]bool, len(c.state.OpenAbstracts))
		for k, v := range c.state.OpenAbstracts {
			s.OpenAbstracts[k] = v
		}
	}
	return s
}

// View runs fn with exclusive access to the document.
func (c *Controller) View(fn func(doc *dom.Document) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.doc)
}

// Replace swaps in a freshly built document and the loader and renderer that
// go with it, cancelling any selection in flight and resetting the filter
// state.
func (c *Controller) Replace(doc *dom.Document, loader *Loader, renderer Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.doc = doc
	c.loader = loader
	c.renderer = renderer
	c.state = NewFilterState()
}
