package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"authd/internal/auth"
	"authd/internal/config"
	"authd/internal/manager"
	"authd/internal/store"
)

const (
	defaultSeedEmail    = "devuser@jlabs.test"
	defaultSeedPassword = "TestPass123!"
)

func newSeedCmd(g *globalFlags) *cobra.Command {
	var email, password string
	var cost int
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Insert a test user",
		Example: "  authd seed --mongo-uri mongodb://localhost:27017",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cost != 0 {
				cfg.BcryptCost = cost
			}
			log, err := g.logger(cmd, cfg)
			if err != nil {
				return err
			}
			return seed(cmd.Context(), cfg, log, cmd.OutOrStdout(), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", defaultSeedEmail, "User email")
	cmd.Flags().StringVar(&password, "password", defaultSeedPassword, "User password")
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (defaults bcrypt_cost or 10)")
	return cmd
}

// seed makes one connect attempt and inserts the user. An existing email is
// reported, not treated as a failure.
func seed(ctx context.Context, cfg config.Config, log zerolog.Logger, out io.Writer, email, password string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mgr := manager.NewWithConfig(cfg.Manager(dialerFor(cfg.MongoURI), &log))
	defer mgr.Close(context.Background())

	h, err := mgr.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Fprintln(out, "Connected to MongoDB")

	u, err := auth.SeedUser(ctx, h.Users(), email, password, cfg.BcryptCost)
	if errors.Is(err, store.ErrDuplicateEmail) {
		fmt.Fprintf(out, "User %s already exists\n", store.NormalizeEmail(email))
		return nil
	}
	if err != nil {
		return err
	}
	log.Debug().Str("id", u.ID.Hex()).Str("email", u.Email).Msg("user seeded")
	fmt.Fprintln(out, "User seeded!")
	return nil
}
