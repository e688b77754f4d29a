package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"authd/internal/config"
	"authd/internal/manager"
	"authd/internal/store"
)

const defaultCheckTimeout = 5 * time.Second

func newCheckCmd(g *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Try one connection to the store and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			return check(cmd.Context(), cfg, cmd.OutOrStdout(), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultCheckTimeout, "Server selection timeout")
	return cmd
}

// check dials once without retry. It prints "Connected OK" or "Failed: <msg>".
func check(ctx context.Context, cfg config.Config, out io.Writer, timeout time.Duration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	opts := store.Options{
		Database:               cfg.MongoDB,
		ConnectTimeout:         timeout,
		ServerSelectionTimeout: timeout,
		AddressFamily:          cfg.AddressFamily,
	}
	switch {
	case opts.AddressFamily == 0:
		opts.AddressFamily = manager.DefaultAddressFamily
	case opts.AddressFamily < 0:
		opts.AddressFamily = 0
	}
	dctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()
	h, err := dialerFor(cfg.MongoURI).Dial(dctx, cfg.MongoURI, opts)
	if err != nil {
		fmt.Fprintf(out, "Failed: %s\n", err.Error())
		return exitError{code: 1}
	}
	_ = h.Close(context.Background())
	fmt.Fprintln(out, "Connected OK")
	return nil
}
