package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/authgate/internal/auth"
	"github.com/jamesprial/authgate/internal/config"
)

func newKeysCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Fetch the identity provider's signing keys and list them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			authCfg := &auth.Config{
				IdentityURL:  cfg.IdP.URL,
				KeyTTL:       cfg.IdP.JWKSCacheTTL,
				FetchTimeout: cfg.IdP.JWKSFetchTimeout,
				Algorithms:   cfg.Token.Algorithms,
			}
			source, err := auth.NewKeySource(authCfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.IdP.JWKSFetchTimeout+time.Second)
			defer cancel()
			set, err := source.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", authCfg.KeySetURL(), err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KID\tALG\tTYPE")
			for _, k := range set.Keys() {
				alg := k.Algorithm
				if alg == "" {
					alg = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%T\n", k.KeyID, alg, k.Key)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d key(s), cached until %s\n", set.Len(), set.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
