package committee

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Members re-navigates to the activated roll-call page, then walks every
// page of the roster table and returns its rows in page-traversal order.
// With noState the current radio selections are not read and every member
// comes back with StateUnset.
func (c *Client) Members(ctx context.Context, noState bool) ([]Member, error) {
	ctx, span := tracer.Start(ctx, "client:Members")
	defer span.End()

	err := c.GoToActivatedRollCallPage(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open the roll call page")
		return nil, err
	}

	var members []Member
	for {
		page, err := c.currentPage()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read the current page")
			return nil, err
		}

		tableHTML, err := c.drv.OuterHTML(selRosterTable)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to pull the roster table")
			return nil, err
		}

		pageMembers, err := parseRosterTable(tableHTML, page, noState)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse the roster table")
			return nil, err
		}
		members = append(members, pageMembers...)

		last, err := c.isOnLastPage()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to detect the last page")
			return nil, err
		}
		if last {
			break
		}

		err = c.goToNextPage()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to advance a page")
			return nil, err
		}
		// let the SPA settle before reading the next page
		c.settle()
	}

	span.SetAttributes(attribute.Int("members", len(members)))
	return members, nil
}

// parseRosterTable extracts the roster rows from one page of table markup.
// Group number sits in the first cell, name in the second; the selected
// radio, if any, carries an `active` marker class.
func parseRosterTable(html string, page int, noState bool) ([]Member, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var members []Member
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		group := strings.TrimSpace(cells.Eq(0).Find("div").First().Text())
		name := strings.TrimSpace(cells.Eq(1).Find("div").First().Text())
		if name == "" {
			return
		}

		state := StateUnset
		if !noState {
			value, _ := row.Find("div.q-option-inner.active input").Attr("value")
			state = stateFromRadioValue(value)
		}

		members = append(members, Member{
			Name:        name,
			GroupNumber: group,
			PageNumber:  page,
			State:       state,
		})
	})
	return members, nil
}
