package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cli.cfg.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is not set")
		}

		token, err := auth.New(cli.cfg.Auth.JWTSecret, cli.cfg.Auth.JWTIssuer).Issue(userID, tokenTTL, time.Now())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(tokenCmd)
}
