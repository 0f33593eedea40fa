package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/cli/render"
	"github.com/SHINOYP/KYC/result"
)

// StatusCommand returns the status command, which looks up a past
// verification by its server-assigned ID.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Look up a verification result by ID",
		ArgsUsage: "<verification-id>",
		Flags:     append(APIFlags(), ReadOnlyFlags()...),
		Action:    statusAction,
	}
}

func statusAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: kyc status <verification-id>", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	client, err := newClient(c, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	raw, err := client.Status(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// The status endpoint shares the verify response shape, so the same
	// projection applies.
	projected := result.Project(raw)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return r.RenderTUI("result", projected)
	}
	return r.Render(ResultView{projected})
}
