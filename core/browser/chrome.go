// Package browser implements core.Browser on top of a headless Chrome
// driven through the DevTools protocol.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/rs/zerolog"
)

const (
	defaultNextPageLabel  = "Next Page"
	defaultStablePolls    = 3
	defaultStableInterval = 500 * time.Millisecond
	defaultStableTimeout  = 10 * time.Second
)

// Chrome launches one Chrome process and opens a tab per session.
type Chrome struct {
	allocCtx context.Context
	cancel   context.CancelFunc

	nextPageLabel  string
	stablePolls    int
	stableInterval time.Duration
	stableTimeout  time.Duration
	log            zerolog.Logger
}

type settings struct {
	headless       bool
	userAgent      string
	execPath       string
	nextPageLabel  string
	stablePolls    int
	stableInterval time.Duration
	stableTimeout  time.Duration
	log            zerolog.Logger
}

// Option configures Chrome.
type Option func(*settings)

// WithHeadless toggles headless mode (default true).
func WithHeadless(headless bool) Option {
	return func(s *settings) { s.headless = headless }
}

// WithUserAgent overrides the browser User-Agent.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithExecPath points at a specific Chrome binary.
func WithExecPath(path string) Option {
	return func(s *settings) { s.execPath = path }
}

// WithNextPageLabel sets the visible text of the pagination control.
func WithNextPageLabel(label string) Option {
	return func(s *settings) {
		if label != "" {
			s.nextPageLabel = label
		}
	}
}

// WithStabilization configures the post-load stabilization poll.
func WithStabilization(polls int, interval, timeout time.Duration) Option {
	return func(s *settings) {
		s.stablePolls = polls
		s.stableInterval = interval
		s.stableTimeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// NewChrome prepares a Chrome allocator bound to ctx. The process starts
// lazily with the first session. Call Close to shut it down.
func NewChrome(ctx context.Context, opts ...Option) *Chrome {
	s := settings{
		headless:       true,
		nextPageLabel:  defaultNextPageLabel,
		stablePolls:    defaultStablePolls,
		stableInterval: defaultStableInterval,
		stableTimeout:  defaultStableTimeout,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", s.headless))
	if s.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(s.userAgent))
	}
	if s.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	return &Chrome{
		allocCtx:       allocCtx,
		cancel:         cancel,
		nextPageLabel:  s.nextPageLabel,
		stablePolls:    s.stablePolls,
		stableInterval: s.stableInterval,
		stableTimeout:  s.stableTimeout,
		log:            s.log,
	}
}

// NewSession opens a new tab.
func (c *Chrome) NewSession(ctx context.Context) (core.Session, error) {
	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	sess := &chromeSession{
		tab:    tabCtx,
		cancel: cancel,
		chrome: c,
	}
	if err := ctx.Err(); err != nil {
		cancel()
		return nil, err
	}
	// The first Run allocates the browser and the tab. It must use the tab
	// context itself, since cancelling that context closes the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("starting browser tab: %w", err)
	}
	return sess, nil
}

// Close terminates the Chrome process.
func (c *Chrome) Close() {
	c.cancel()
}

type chromeSession struct {
	tab    context.Context
	cancel context.CancelFunc
	chrome *Chrome
}

// run executes actions in the tab, bounded by ctx's cancellation and deadline.
// Cancelling the derived context does not close the tab.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return err
	}

	err := WaitStable(ctx, s.bodySize, s.chrome.stablePolls, s.chrome.stableInterval, s.chrome.stableTimeout)
	if errors.Is(err, ErrUnstable) {
		s.chrome.log.Debug().Str("url", url).Msg("page still changing after stabilization timeout")
		return nil
	}
	return err
}

func (s *chromeSession) bodySize(ctx context.Context) (int, error) {
	var body string
	if err := s.run(ctx, chromedp.OuterHTML("body", &body, chromedp.ByQuery)); err != nil {
		return 0, err
	}
	return len(body), nil
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromeSession) NextPage(ctx context.Context) (bool, error) {
	sel := `//*[normalize-space(text())=` + strconv.Quote(s.chrome.nextPageLabel) + `]`

	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return false, err
	}
	if len(nodes) == 0 {
		return false, nil
	}

	node := nodes[0]
	if _, disabled := node.Attribute("disabled"); disabled {
		return false, nil
	}
	if v, _ := node.Attribute("aria-disabled"); v == "true" {
		return false, nil
	}

	// Elements without a box model are not rendered, hence not visible.
	visible := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.GetBoxModel().WithNodeID(node.NodeID).Do(ctx)
		return err
	})) == nil
	if !visible {
		return false, nil
	}

	if err := s.run(ctx, chromedp.MouseClickNode(node)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
