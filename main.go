// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tetrarx/tetrarx/cmd"
	"github.com/tetrarx/tetrarx/internal/config"
	"github.com/USA-RedDragon/configulator"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cmd.NewCommand(version, commit)

	ctx, err := configulator.New[config.Config]().WithCommand(rootCmd).IntoContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
