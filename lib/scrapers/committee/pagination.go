package committee

import (
	"fmt"
	"strconv"
	"strings"
)

func (c *Client) currentPage() (int, error) {
	text, err := c.drv.Text(selCurrentPageSpan)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot read the page indicator", ErrUnableToSwitchPage)
	}
	page, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: bad page indicator %q", ErrUnableToSwitchPage, text)
	}
	return page, nil
}

func (c *Client) isOnPage(page int) (bool, error) {
	err := c.drv.WaitVisible(c.actionTimeout, selPageButton(page))
	if err != nil {
		return false, fmt.Errorf("%w: page %d button never appeared", ErrUnableToSwitchPage, page)
	}
	return c.drv.IsPresent(selCurrentPageButton(page))
}

func (c *Client) goToPage(page int) error {
	err := c.drv.WaitVisible(c.actionTimeout, selNotCurrentPageButton(page))
	if err != nil {
		return fmt.Errorf("%w: page %d is not reachable", ErrUnableToSwitchPage, page)
	}
	err = c.drv.Click(selNotCurrentPageButton(page))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToSwitchPage, err)
	}

	onPage, err := c.isOnPage(page)
	if err != nil {
		return err
	}
	if !onPage {
		return fmt.Errorf("%w: did not land on page %d", ErrUnableToSwitchPage, page)
	}
	return nil
}

// goToNextPage advances one page and verifies the indicator incremented by
// exactly one, the only reliable signal that the SPA actually re-rendered.
func (c *Client) goToNextPage() error {
	original, err := c.currentPage()
	if err != nil {
		return err
	}

	err = c.drv.WaitVisible(c.actionTimeout, selEnabledNextPage)
	if err != nil {
		return fmt.Errorf("%w: next-page button never enabled", ErrUnableToSwitchPage)
	}
	err = c.drv.Click(selEnabledNextPage)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToSwitchPage, err)
	}

	current, err := c.currentPage()
	if err != nil {
		return err
	}
	if current != original+1 {
		return fmt.Errorf("%w: expected page %d, on page %d", ErrUnableToSwitchPage, original+1, current)
	}
	return nil
}

func (c *Client) isOnLastPage() (bool, error) {
	err := c.drv.WaitVisible(c.actionTimeout, selNextPageButton)
	if err != nil {
		return false, fmt.Errorf("%w: pagination controls never appeared", ErrUnableToSwitchPage)
	}
	return c.drv.IsPresent(selDisabledNextPage)
}
