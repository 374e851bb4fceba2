// Package browsertest provides an in-memory core.Browser for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaurav-prasanna/readycrawl/core"
)

// Site serves a fixed sequence of rendered pages per URL. NextPage advances
// through the sequence and reports false past the last page, unless Stuck
// is set, in which case the control stays enabled on the last page forever.
type Site struct {
	// Pages maps a URL to the full-page HTML of each pagination step.
	Pages map[string][]string
	// NavigateErr fails navigation to the URL.
	NavigateErr map[string]error
	// HTMLErrAt fails reading the page at the given zero-based step.
	HTMLErrAt map[string]int
	// NextErrAt fails activating the control on the given step.
	NextErrAt map[string]int
	// Stuck keeps the control enabled on the last page.
	Stuck map[string]bool

	mu       sync.Mutex
	opened   int
	closed   int
	visits   map[string]int
	sessions []*session
}

// NewSite creates a Site serving pages.
func NewSite(pages map[string][]string) *Site {
	return &Site{Pages: pages}
}

// NewSession opens a fake tab.
func (s *Site) NewSession(ctx context.Context) (core.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	sess := &session{site: s, step: -1}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

// Opened returns the number of sessions opened.
func (s *Site) Opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

// Closed returns the number of sessions closed.
func (s *Site) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Visits returns how many times url was navigated to.
func (s *Site) Visits(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visits[url]
}

type session struct {
	site *Site
	url  string
	step int
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	site := s.site
	site.mu.Lock()
	defer site.mu.Unlock()
	if site.visits == nil {
		site.visits = make(map[string]int)
	}
	site.visits[url]++

	if err := site.NavigateErr[url]; err != nil {
		return err
	}
	if _, ok := site.Pages[url]; !ok {
		return fmt.Errorf("navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}
	s.url, s.step = url, 0
	return nil
}

func (s *session) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	site := s.site
	site.mu.Lock()
	defer site.mu.Unlock()

	if s.step < 0 {
		return "", fmt.Errorf("no page loaded")
	}
	if at, ok := site.HTMLErrAt[s.url]; ok && at == s.step {
		return "", fmt.Errorf("read page %d of %s: target closed", s.step, s.url)
	}
	return site.Pages[s.url][s.step], nil
}

func (s *session) NextPage(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	site := s.site
	site.mu.Lock()
	defer site.mu.Unlock()

	if at, ok := site.NextErrAt[s.url]; ok && at == s.step {
		return false, fmt.Errorf("click next on page %d of %s: node detached", s.step, s.url)
	}
	if s.step+1 < len(site.Pages[s.url]) {
		s.step++
		return true, nil
	}
	return site.Stuck[s.url], nil
}

func (s *session) Close() error {
	s.site.mu.Lock()
	defer s.site.mu.Unlock()
	s.site.closed++
	return nil
}
