// Command tokengen mints bearer tokens for local use against the idcard API.
// It signs with the key the server is configured with, so tokens only work
// where that key is known.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	jwttoken "idcard/internal/jwt_token"
	"idcard/internal/platform/config"
	redisclient "idcard/internal/platform/redis"
	id "idcard/pkg/domain"
)

type tokenOutput struct {
	Token     string `json:"token"`
	JTI       string `json:"jti"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args[0] {
	case "access":
		return runAccess(ctx, cfg, args[1:], out)
	case "revoke":
		return runRevoke(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runAccess(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	var (
		userID, username, role string
		ttl                    time.Duration
		asJSON                 bool
	)
	fs := pflag.NewFlagSet("access", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&userID, "user-id", "", "subject UUID (generated when empty)")
	fs.StringVar(&username, "username", "", "username recorded as changed_by (defaults to the role)")
	fs.StringVarP(&role, "role", "r", string(id.RoleRegistrar), "admin, registrar, supervisor, officer or citizen")
	fs.DurationVar(&ttl, "ttl", cfg.Server.TokenTTL, "token lifetime")
	fs.BoolVar(&asJSON, "json", false, "print JSON instead of the bare token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedRole, ok := id.ParseRole(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}
	actor := id.Actor{ID: id.UserID(uuid.New()), Username: strings.TrimSpace(username), Role: parsedRole}
	if userID != "" {
		parsed, err := id.ParseUserID(userID)
		if err != nil {
			return err
		}
		actor.ID = parsed
	}
	if actor.Username == "" {
		actor.Username = string(parsedRole)
	}

	svc := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience, ttl)
	token, jti, err := svc.GenerateAccessToken(ctx, actor)
	if err != nil {
		return err
	}
	if !asJSON {
		_, err = fmt.Fprintln(out, token)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenOutput{
		Token:     token,
		JTI:       jti,
		UserID:    actor.ID.String(),
		Username:  actor.Username,
		Role:      string(actor.Role),
		ExpiresAt: time.Now().Add(ttl).UTC().Format(time.RFC3339),
	})
}

func runRevoke(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	var token string
	fs := pflag.NewFlagSet("revoke", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&token, "token", "t", "", "token to revoke")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if token == "" {
		return errors.New("--token is required")
	}

	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("REDIS_URL is required to revoke tokens")
	}
	defer client.Close() //nolint:errcheck

	svc := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience, cfg.Server.TokenTTL)
	if err := jwttoken.NewRevoker(svc, jwttoken.NewRedisRevocationList(client.Client)).RevokeToken(ctx, token); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "revoked")
	return err
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `tokengen - mint bearer tokens for the idcard API

Usage:
  tokengen access [--role registrar] [--username NAME] [--user-id UUID] [--ttl 15m] [--json]
  tokengen revoke --token TOKEN

Signing key, issuer and audience come from the same environment as the server
(JWT_SIGNING_KEY, JWT_ISSUER, JWT_AUDIENCE). Revocation needs REDIS_URL.
`)
}
