// Command token mints access tokens for local development.
// Tokens are normally issued by the identity provider.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nekogravitycat/sport-hall-booking/internal/auth"
	"github.com/nekogravitycat/sport-hall-booking/internal/config"
)

func main() {
	user := flag.String("user", "", "user id to put in the subject claim")
	admin := flag.Bool("admin", false, "grant the admin claim")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-admin]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL).GenerateAccessToken(*user, *admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
