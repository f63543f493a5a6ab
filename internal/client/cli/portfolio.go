package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/iudanet/invtracker/internal/client/app"
	"github.com/iudanet/invtracker/internal/client/portfolio"
)

type summaryCmd struct {
	rt    *Runtime
	watch time.Duration
	count int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio summary" }
func (*summaryCmd) Usage() string {
	return `invtracker summary [-watch <interval>] [-n <count>]

  Displays the headline numbers of the portfolio. With -watch the summary is
  fetched again every interval until interrupted or -n refreshes were shown.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.watch, "watch", 0, "refresh interval, 0 to print once")
	f.IntVar(&c.count, "n", 0, "stop after n summaries in watch mode, 0 for no limit")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.watch < 0 || c.count < 0 {
		c.rt.fail(fmt.Errorf("%w: -watch and -n must not be negative", errUsage))
		return subcommands.ExitUsageError
	}
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		if err := requireSession(ctx, a); err != nil {
			return err
		}
		if c.watch == 0 {
			return c.show(ctx, a, false)
		}
		return c.loop(ctx, a)
	})
}

func (c *summaryCmd) show(ctx context.Context, a *app.App, stamp bool) error {
	s, err := a.Portfolio.Summary(ctx)
	if err != nil {
		return sessionErr(err)
	}
	if stamp {
		renderTimestamp(c.rt.IO, time.Now())
	} else {
		c.rt.IO.Println("=== Portfolio Summary ===")
	}
	renderSummary(c.rt.IO, s)
	return nil
}

func (c *summaryCmd) loop(ctx context.Context, a *app.App) error {
	updates, unsubscribe := a.Auth.State().Subscribe()
	defer unsubscribe()
	<-updates // текущее состояние

	ticker := time.NewTicker(c.watch)
	defer ticker.Stop()

	for shown := 1; ; shown++ {
		if err := c.show(ctx, a, true); err != nil {
			return err
		}
		if c.count > 0 && shown >= c.count {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case st := <-updates:
			if st.Expired {
				return errSessionExpired
			}
		case <-ticker.C:
		}
	}
}

type acquireCmd struct {
	rt *Runtime
	in portfolio.AcquisitionInput
	// tags is a comma-separated list.
	tags string
}

func (*acquireCmd) Name() string     { return "acquire" }
func (*acquireCmd) Synopsis() string { return "record an acquisition" }
func (*acquireCmd) Usage() string {
	return `invtracker acquire -type <type> -symbol <symbol> -qty <quantity> -price <unit price> [options]

  Records a purchase. Types: PRECIOUS_METAL, FX, EQUITY, FUND.
  Missing type, symbol, quantity and price are prompted for.

  invtracker acquire -type PRECIOUS_METAL -symbol XAU -qty 10 -price 2450.50 -currency TRY
`
}

func (c *acquireCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in.AssetType, "type", "", "asset type")
	f.StringVar(&c.in.Symbol, "symbol", "", "asset symbol")
	f.StringVar(&c.in.Name, "name", "", "asset name")
	f.StringVar(&c.in.Quantity, "qty", "", "quantity")
	f.StringVar(&c.in.UnitPrice, "price", "", "unit price")
	f.StringVar(&c.in.Fee, "fee", "", "fee paid")
	f.StringVar(&c.in.Currency, "currency", "", "ISO 4217 currency of price and fee")
	f.StringVar(&c.in.Date, "date", "", "acquisition date YYYY-MM-DD, defaults to today")
	f.StringVar(&c.in.Notes, "notes", "", "free-form notes")
	f.StringVar(&c.tags, "tags", "", "comma-separated tags")
}

func (c *acquireCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		if err := requireSession(ctx, a); err != nil {
			return err
		}
		if err := c.prompt(); err != nil {
			return err
		}
		c.in.Tags = splitTags(c.tags)

		created, err := a.Portfolio.AddAcquisition(ctx, c.in)
		if err != nil {
			return sessionErr(err)
		}
		c.rt.IO.Printf("✓ Recorded %s %s at %s on %s\n",
			created.Quantity.String(), created.AssetSymbol,
			formatMoney(created.UnitPrice, created.Currency), created.AcquisitionDate)
		c.rt.IO.Printf("ID: %s\n", created.ID)
		return nil
	})
}

// prompt asks for the required fields that were not given as flags.
func (c *acquireCmd) prompt() error {
	fields := []struct {
		label string
		value *string
	}{
		{"Asset type (PRECIOUS_METAL, FX, EQUITY, FUND): ", &c.in.AssetType},
		{"Symbol: ", &c.in.Symbol},
		{"Quantity: ", &c.in.Quantity},
		{"Unit price: ", &c.in.UnitPrice},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		v, err := c.rt.IO.ReadInput(f.label)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		*f.value = v
	}
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type acquisitionsCmd struct {
	rt        *Runtime
	positions bool
}

func (*acquisitionsCmd) Name() string     { return "acquisitions" }
func (*acquisitionsCmd) Synopsis() string { return "list recorded acquisitions" }
func (*acquisitionsCmd) Usage() string {
	return `invtracker acquisitions [-positions]

  Lists recorded acquisitions, or with -positions the holdings per symbol.
`
}

func (c *acquisitionsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.positions, "positions", false, "group acquisitions into positions")
}

func (c *acquisitionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		if err := requireSession(ctx, a); err != nil {
			return err
		}
		if c.positions {
			positions, err := a.Portfolio.Positions(ctx)
			if err != nil {
				return sessionErr(err)
			}
			renderPositions(c.rt.IO, positions)
			return nil
		}

		list, err := a.Portfolio.Acquisitions(ctx)
		if err != nil {
			return sessionErr(err)
		}
		renderAcquisitions(c.rt.IO, list)
		return nil
	})
}

type allocationCmd struct {
	rt *Runtime
}

func (*allocationCmd) Name() string     { return "allocation" }
func (*allocationCmd) Synopsis() string { return "show how the portfolio splits across asset types" }
func (*allocationCmd) Usage() string {
	return `invtracker allocation

  Shows the value held in each asset type and its share of the portfolio.
`
}

func (*allocationCmd) SetFlags(*flag.FlagSet) {}

func (c *allocationCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.rt.run(ctx, func(ctx context.Context, a *app.App) error {
		if err := requireSession(ctx, a); err != nil {
			return err
		}
		slices, err := a.Portfolio.Allocation(ctx)
		if err != nil {
			return sessionErr(err)
		}
		c.rt.IO.Println("=== Allocation ===")
		renderAllocation(c.rt.IO, slices)
		return nil
	})
}
