// Package navigation drives a live page between the reservation list, expanded
// trip panels and per-trip detail pages.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/discovery"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/poll"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// State is the controller's belief about what the page shows
type State int

const (
	AtUnknownLocation State = iota
	AtListPage
	PanelCollapsed
	PanelExpanded
	AtDetailPage
)

func (s State) String() string {
	switch s {
	case AtListPage:
		return "list"
	case PanelCollapsed:
		return "panel-collapsed"
	case PanelExpanded:
		return "panel-expanded"
	case AtDetailPage:
		return "detail"
	default:
		return "unknown"
	}
}

// Reporter receives transition and timeout messages
type Reporter interface {
	Debug(level models.DebugLevel, msg string)
}

// Controller moves one page through the navigation states. Timeouts never
// fail an operation; only context cancellation is returned.
type Controller struct {
	Config   *config.NavigationConfig
	page     dom.Page
	reporter Reporter
	state    State
}

// NewController creates a controller for page
func NewController(cfg *config.NavigationConfig, page dom.Page, reporter Reporter) *Controller {
	return &Controller{Config: cfg, page: page, reporter: reporter}
}

// State reports the current state
func (c *Controller) State() State {
	return c.state
}

// GoToList makes sure the page shows the reservation list and waits for its content
func (c *Controller) GoToList(ctx context.Context) error {
	loc, err := c.page.Location(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if !SameListPage(loc, c.Config.ListURL) {
		c.debugf(models.DebugInfo, "Navigating to reservation list %s", c.Config.ListURL)
		if err := c.page.Navigate(ctx, c.Config.ListURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.debugf(models.DebugWarning, "Navigation to reservation list failed: %v", err)
		}
		if err := c.waitForLoad(ctx); err != nil {
			return err
		}
	}

	if err := c.waitForList(ctx); err != nil {
		return err
	}
	c.transition(AtListPage)
	return nil
}

// Expand opens a collapsed trip panel. It returns the region re-located in the
// latest document and whether the panel is known to be expanded.
func (c *Controller) Expand(ctx context.Context, region discovery.Region) (discovery.Region, bool, error) {
	if IsExpanded(region.Selection) {
		c.transition(PanelExpanded)
		return region, true, nil
	}
	c.transition(PanelCollapsed)

	toggle := region.Path
	if t := FindToggle(region.Selection); t != nil {
		toggle = dom.CSSPath(t)
	}

	if err := c.page.Click(ctx, toggle); err != nil {
		if ctx.Err() != nil {
			return region, false, ctx.Err()
		}
		c.debugf(models.DebugWarning, "Could not click panel toggle of trip %d: %v", region.Index+1, err)
		return region, false, nil
	}
	if err := poll.Sleep(ctx, c.Config.ExpandSettle); err != nil {
		return region, false, err
	}

	latest := region
	expanded, err := poll.Within(ctx, c.Config.PollInterval, c.Config.ExpandWait, func(ctx context.Context) (bool, error) {
		sel, err := c.relocate(ctx, region)
		if err != nil {
			return false, err
		}
		latest.Selection = sel
		return IsExpanded(sel), nil
	})
	if err != nil {
		return region, false, err
	}
	if !expanded {
		c.debugf(models.DebugWarning, "Panel of trip %d did not expand within %s", region.Index+1, c.Config.ExpandWait)
		return latest, false, nil
	}

	c.transition(PanelExpanded)
	return latest, true, nil
}

// OpenDetail activates the trip's view/modify action and waits for the detail
// page. It reports whether the page location changed.
func (c *Controller) OpenDetail(ctx context.Context, region discovery.Region) (bool, error) {
	var actionPath string
	found, err := poll.Within(ctx, c.Config.ActionPollInterval, c.Config.ActionWait, func(ctx context.Context) (bool, error) {
		sel, err := c.relocate(ctx, region)
		if err != nil {
			return false, err
		}
		action := FindDetailAction(sel)
		if action == nil {
			return false, nil
		}
		actionPath = dom.CSSPath(action)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		c.debugf(models.DebugWarning, "No view/modify action found for trip %d", region.Index+1)
		return false, nil
	}

	before, _ := c.page.Location(ctx)
	if err := c.page.Click(ctx, actionPath); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		c.debugf(models.DebugWarning, "Could not click view/modify action of trip %d: %v", region.Index+1, err)
		return false, nil
	}

	changed, err := poll.Within(ctx, c.Config.PollInterval, c.Config.LocationWait, func(ctx context.Context) (bool, error) {
		loc, err := c.page.Location(ctx)
		return err == nil && loc != before, err
	})
	if err != nil {
		return false, err
	}
	if !changed {
		c.debugf(models.DebugWarning, "Detail page of trip %d did not open within %s", region.Index+1, c.Config.LocationWait)
		return false, nil
	}

	if err := c.waitForLoad(ctx); err != nil {
		return false, err
	}
	c.transition(AtDetailPage)
	return true, nil
}

// Return goes back to the reservation list, by history when possible
func (c *Controller) Return(ctx context.Context) error {
	if err := c.page.Back(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, dom.ErrNoHistory) {
			c.debugf(models.DebugWarning, "Going back failed: %v", err)
		}
		c.debugf(models.DebugInfo, "Returning to reservation list by URL")
		if err := c.page.Navigate(ctx, c.Config.ListURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.debugf(models.DebugWarning, "Navigation to reservation list failed: %v", err)
		}
	}

	if err := c.waitForLoad(ctx); err != nil {
		return err
	}
	if err := c.waitForList(ctx); err != nil {
		return err
	}
	c.transition(AtListPage)
	return nil
}

// waitForLoad polls document.readyState, then lets late scripts settle
func (c *Controller) waitForLoad(ctx context.Context) error {
	loaded, err := poll.Within(ctx, c.Config.PollInterval, c.Config.LoadTimeout, func(ctx context.Context) (bool, error) {
		state, err := c.page.ReadyState(ctx)
		return state == "complete", err
	})
	if err != nil {
		return err
	}
	if !loaded {
		c.debugf(models.DebugWarning, "Page did not finish loading within %s", c.Config.LoadTimeout)
	}
	return poll.Sleep(ctx, c.Config.LoadSettle)
}

func (c *Controller) waitForList(ctx context.Context) error {
	found, err := poll.Within(ctx, c.Config.PollInterval, c.Config.ListWait, func(ctx context.Context) (bool, error) {
		doc, err := c.page.Snapshot(ctx)
		if err != nil {
			return false, err
		}
		for _, selector := range c.Config.ListSelectors {
			if doc.Find(selector).Length() > 0 {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	if !found {
		c.debugf(models.DebugWarning, "Reservation list content did not appear within %s", c.Config.ListWait)
	}
	return nil
}

// relocate finds region in a fresh snapshot by its path
func (c *Controller) relocate(ctx context.Context, region discovery.Region) (*goquery.Selection, error) {
	doc, err := c.page.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sel := doc.Find(region.Path).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("region %s: %w", region.Path, dom.ErrElementNotFound)
	}
	return sel, nil
}

func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	c.debugf(models.DebugInfo, "Navigation state %s -> %s", c.state, to)
	c.state = to
}

func (c *Controller) debugf(level models.DebugLevel, format string, args ...any) {
	if c.reporter != nil {
		c.reporter.Debug(level, fmt.Sprintf(format, args...))
	}
}

// SameListPage reports whether loc is the list page: same host and path,
// ignoring a trailing slash and the query
func SameListPage(loc, listURL string) bool {
	a, err := url.Parse(loc)
	if err != nil || a.Host == "" {
		return false
	}
	b, err := url.Parse(listURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(a.Host, b.Host) &&
		strings.TrimSuffix(a.Path, "/") == strings.TrimSuffix(b.Path, "/")
}
