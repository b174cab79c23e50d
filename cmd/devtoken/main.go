// Command devtoken prints an HS256 bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/andrewpaige1/eduengage-api/auth"
	"github.com/andrewpaige1/eduengage-api/config"
)

func main() {
	subject := flag.String("sub", "dev|student", "token subject")
	nickname := flag.String("nickname", "student", "nickname claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if env.Auth.Domain != "" {
		fmt.Fprintln(os.Stderr, "AUTH0_DOMAIN is set; tokens must come from Auth0")
		os.Exit(1)
	}

	tok, err := mint(env.Auth, *subject, *nickname, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

// mint signs a token and reads it back with the same secret, so a token that the
// API would reject is never printed.
func mint(cfg config.AuthConfig, subject, nickname string, ttl time.Duration) (string, error) {
	tok, err := auth.CreateToken(auth.TokenRequest{
		Secret:   cfg.Secret,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		Subject:  subject,
		Nickname: nickname,
		TTL:      ttl,
	})
	if err != nil {
		return "", err
	}
	claims, err := auth.VerifyToken(tok, cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("verify minted token: %w", err)
	}
	if claims.Subject != subject {
		return "", fmt.Errorf("minted token subject %q, want %q", claims.Subject, subject)
	}
	return tok, nil
}
