package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/cli/render"
)

// historyWarningThreshold is the number of reports above which we warn
// about using --limit.
const historyWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// HistoryCommand returns the history command, which lists recorded
// verification attempts newest first.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded verification attempts",
		Flags: append(append(APIFlags(), ReadOnlyFlags()...),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of attempts to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for the history command", 1)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	limit := c.Int("limit")
	reports, err := store.List(c.Context, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(reports) > historyWarningThreshold && limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(reports))
	}

	return r.Render(HistoryView{Reports: reports})
}
