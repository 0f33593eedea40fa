package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/cli/render"
	"github.com/SHINOYP/KYC/history"
)

// StatsCommand returns the stats command, which aggregates the recorded
// verification attempts into derived facts.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show aggregated verification statistics",
		Flags:  append(APIFlags(), ReadOnlyFlags()...),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	reports, err := store.List(c.Context, 0)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	stats := history.Aggregate(reports)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("stats", &stats)
	}

	return r.Render(StatsView{stats})
}
