package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/SHINOYP/KYC/cli/render"
	"github.com/SHINOYP/KYC/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// TableKV implements render.KV.
func (v VersionResponse) TableKV() [][2]string {
	return [][2]string{
		{"version", v.Version},
		{"commit", v.Commit},
	}
}

// VersionCommand returns the version command.
// It must not contact the API.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for the version command", 1)
		}

		return r.Render(VersionResponse{
			Version: types.Version,
			Commit:  commit,
		})
	}
}
