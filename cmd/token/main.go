// Команда token печатает Bearer-токен для запросов к API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/UkralStul/yatube-service/internal/auth"
	"github.com/UkralStul/yatube-service/internal/config"
	"github.com/UkralStul/yatube-service/internal/forms"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env", ".env", "Path to .env file")
	username := flag.String("user", "", "Username to issue the token for")
	admin := flag.Bool("admin", false, "Grant admin rights")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")
	flag.Parse()

	form := &forms.UserForm{Username: *username}
	if err := form.Clean(); err != nil {
		log.Fatalf("invalid -user: %v", err)
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	token, err := auth.IssueToken([]byte(cfg.JWTSecret), form.Username, *admin, *ttl)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Fprintln(os.Stdout, token)
}
