package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch the meetings once and print the rendered list",
		Long: "Mounts a single view, waits for the collection request to settle and " +
			"writes the rendered HTML to stdout. A failed request renders the heading only.",
		Args: cobra.NoArgs,
		RunE: runRender,
	}
	cmd.Flags().Duration("wait", time.Minute, "maximum time to wait for the collection")
	cmd.Flags().Bool("strict", false, "exit with an error when the request fails")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	// Logs go to stderr so stdout carries only markup
	a, err := newApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer a.views.Shutdown(ctx)

	v, err := a.views.Mount(ctx)
	if err != nil {
		return fmt.Errorf("failed to mount view: %w", err)
	}
	defer a.views.Unmount(ctx, v.ID())

	wait, _ := cmd.Flags().GetDuration("wait")
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := v.Wait(waitCtx); err != nil {
		a.log.Warn("Collection request did not settle", "error", err)
	}

	if err := v.Render(ctx, cmd.OutOrStdout()); err != nil {
		return err
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && v.Err() != nil {
		return fmt.Errorf("failed to fetch meetings: %w", v.Err())
	}
	return nil
}
