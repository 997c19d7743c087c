package committee

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const rollCallAttempts = 10

// RollCall replays the resolved state of every member back into the
// platform. The SPA can lose UI state on pagination or transient rendering
// failures mid-pass, so the whole operation retries up to 10 passes,
// each pass re-navigating from scratch and resuming from the first
// unprocessed member rather than restarting.
func (c *Client) RollCall(ctx context.Context, members []Member, onProcessed func(Member)) error {
	ctx, span := tracer.Start(ctx, "client:RollCall")
	defer span.End()

	processed := 0
	for attempt := 0; attempt < rollCallAttempts; attempt++ {
		err := c.GoToActivatedRollCallPage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to reopen the roll call page")
			return err
		}

		processed += c.rollCallPass(ctx, members[processed:], onProcessed)
		span.SetAttributes(attribute.Int("processed", processed))
		if processed == len(members) {
			return nil
		}
		slog.Info("roll call pass incomplete, retrying",
			"attempt", attempt+1, "processed", processed, "total", len(members))
	}

	span.SetStatus(codes.Error, ErrUnableToCompleteRollCall.Error())
	return ErrUnableToCompleteRollCall
}

// rollCallPass commits members one by one until the page desyncs, and
// reports how many made it through.
func (c *Client) rollCallPass(ctx context.Context, members []Member, onProcessed func(Member)) int {
	count := 0
	for _, m := range members {
		err := c.commitMember(ctx, m)
		if err != nil {
			slog.Warn("failed to commit a member, will resume next pass",
				"member", m.Key(), "err", err)
			return count
		}
		count++
		if onProcessed != nil {
			onProcessed(m)
		}
	}
	return count
}

// commitMember clicks the radio matching the member's resolved state, on
// the page the member was scraped from. A radio that is already the
// active selection is left alone, which keeps the commit idempotent.
func (c *Client) commitMember(ctx context.Context, m Member) error {
	if m.State == StateUnset {
		// nothing resolved for this member, processed without mutation
		return nil
	}

	onPage, err := c.isOnPage(m.PageNumber)
	if err != nil {
		return err
	}
	if !onPage {
		err = c.goToPage(m.PageNumber)
		if err != nil {
			return err
		}
	}

	radio := selMemberStateRadio(m)
	err = c.drv.WaitVisible(c.actionTimeout, radio)
	if err != nil {
		return err
	}

	active, err := c.drv.IsPresent(selActiveMemberStateRadio(m))
	if err != nil {
		return err
	}
	if active {
		return nil
	}

	err = c.drv.Click(radio)
	if err != nil {
		return err
	}
	// give the SPA a moment to persist the click
	c.settle()
	return nil
}
