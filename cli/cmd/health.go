package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/cli/render"
	"github.com/SHINOYP/KYC/types"
	"github.com/SHINOYP/KYC/workflow"
)

// HealthCommand returns the health command.
// The probe is advisory only: a degraded API never blocks verify.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Probe the KYC API health endpoint",
		Flags:  append(APIFlags(), ReadOnlyFlags()...),
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	client, err := newClient(c, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	// The probe runs through a session controller so the outcome is
	// recorded the same way the verify session records it.
	controller, err := workflow.New(workflow.Config{
		Client:     client,
		PreviewDir: cfg.PreviewDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = controller.Close() }()

	h := controller.CheckHealth(c.Context)

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return r.RenderTUI("health", &h)
	}
	if err := r.Render(HealthView{&h}); err != nil {
		return err
	}

	// A failing probe is still exit 1 for scripted callers.
	if h.Status != types.HealthHealthy {
		return cli.Exit("", 1)
	}
	return nil
}
