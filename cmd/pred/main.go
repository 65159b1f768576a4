// Command pred queries the reduction graph between NP-hard problems.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/reductions/internal/cli"
)

func main() {
	// Use a minimal logger until the config is loaded.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pred:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
