package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/spec-kit/fluxboard/internal/auth"
	"github.com/spec-kit/fluxboard/internal/persistence"
	"github.com/spec-kit/fluxboard/internal/repository"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development session token for a user",
	Long: `Signs a session token with JWT_SECRET for a user of the users table.
The role is read from the table.

Example:
  fluxboard token --user 6f1c...`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd.Context(), cfg.Board.FetchTimeout())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	user, err := repository.NewUserRepository(pg.PoolHandle()).GetByID(ctx, tokenUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s not found", tokenUser)
		}
		return err
	}

	token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes).GenerateToken(*user)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n# %s (%s), expires %s\n", token, user.Email, user.Role, expiresAt.Format(time.RFC3339))
	return nil
}

func contextWithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}

func nowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}
