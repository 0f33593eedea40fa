package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/adapter"
	"github.com/SHINOYP/KYC/cli/config"
	"github.com/SHINOYP/KYC/cli/render"
	"github.com/SHINOYP/KYC/cli/tui"
	"github.com/SHINOYP/KYC/log"
	"github.com/SHINOYP/KYC/staging"
	"github.com/SHINOYP/KYC/types"
	"github.com/SHINOYP/KYC/workflow"
)

// Exit codes for verify.
const (
	exitSuccess      = 0
	exitVerifyFailed = 1
	exitInvalidInput = 2
)

// publishTimeout bounds the post-attempt notification publish.
const publishTimeout = 30 * time.Second

// VerifyCommand returns the verify command.
// This is the only command that submits work to the API.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Submit an ID document and a selfie for identity verification",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Path to the ID document image (JPEG, PNG, or WebP, max 10 MiB)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "selfie",
				Usage:    "Path to the selfie image (JPEG, PNG, or WebP, max 10 MiB)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress result output",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip recording the attempt in the history log",
			},
		}, append(APIFlags(), ReadOnlyFlags()...)...),
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	client, err := newClient(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}
	defer func() { _ = client.Close() }()

	controller, err := workflow.New(workflow.Config{
		Client:     client,
		PreviewDir: cfg.PreviewDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = controller.Close() }()

	// Stage both files; validation failures are user errors.
	if err := controller.Select(staging.SlotIDCard, c.String("id")); err != nil {
		return cli.Exit(fmt.Sprintf("id document rejected: %v", err), exitInvalidInput)
	}
	if err := controller.Select(staging.SlotSelfie, c.String("selfie")); err != nil {
		return cli.Exit(fmt.Sprintf("selfie rejected: %v", err), exitInvalidInput)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Session-start probe. Advisory only: a degraded API never blocks
	// the attempt.
	controller.CheckHealth(ctx)

	var report *types.Report
	var verifyErr error
	if c.Bool("tui") {
		report, verifyErr = tui.RunVerifyTUI(ctx, controller)
	} else {
		report, verifyErr = controller.StartVerification(ctx)
	}

	if report == nil {
		// Guard failure: nothing was attempted.
		if verifyErr != nil {
			return cli.Exit(verifyErr.Error(), exitInvalidInput)
		}
		return cli.Exit("", exitInvalidInput)
	}

	// Record and notify regardless of outcome; both are best-effort
	// and must not mask the verification result.
	finishAttempt(c, cfg, controller, report)

	if verifyErr != nil {
		if !c.Bool("tui") {
			fmt.Fprintf(os.Stderr, "verification failed: %v\n", verifyErr)
		}
		return cli.Exit("", exitVerifyFailed)
	}

	if !c.Bool("quiet") && !c.Bool("tui") {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		if err := r.Render(ResultView{report.Result}); err != nil {
			return err
		}
	}

	return cli.Exit("", exitSuccess)
}

// finishAttempt appends the report to history and publishes the
// completion event. Failures are warnings on stderr, never exit codes.
func finishAttempt(c *cli.Context, cfg *config.Config, controller *workflow.Controller, report *types.Report) {
	logger := log.NewLogger(controller.SessionID())

	if !c.Bool("no-history") {
		store, err := openHistory(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			if err := store.Append(ctx, report); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record attempt: %v\n", err)
			}
			cancel()
			_ = store.Close()
		}
	}

	a, err := buildAdapter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: adapter misconfigured: %v\n", err)
		return
	}
	if a == nil {
		return
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := a.Publish(ctx, adapter.NewEvent(report)); err != nil {
		logger.Warn("event publish failed", map[string]any{"error": err.Error()})
		fmt.Fprintf(os.Stderr, "Warning: failed to publish completion event: %v\n", err)
	}
}
