// Command adminctl prepares admin credentials and smoke-tests the gateway login.
//
//	adminctl hash -password <pw>        print a bcrypt hash for ADMIN_PASSWORD_HASH
//	adminctl token -secret <jwt secret> print a signed admin token
//	adminctl login -email <e> -password <pw> [-base-url url]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "hash":
		runHash(args)
	case "token":
		runToken(args)
	case "login":
		runLogin(args)
	default:
		usage()
	}
}

func runHash(args []string) {
	fs := flag.NewFlagSet("hash", flag.ExitOnError)
	password := fs.String("password", getenv("ADMIN_PASSWORD", ""), "admin password to hash")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	_ = fs.Parse(args)

	if *password == "" {
		fatal("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fatal(err.Error())
	}
	fmt.Println(string(hash))
}

func runToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	secret := fs.String("secret", getenv("JWT_SECRET", ""), "HS256 signing secret")
	email := fs.String("email", getenv("ADMIN_EMAIL", ""), "admin email claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	_ = fs.Parse(args)

	if strings.TrimSpace(*secret) == "" {
		fatal("JWT_SECRET is required")
	}
	token, err := auth.SignHS256(*secret, "firm-admin", *email, auth.RoleAdmin, *ttl, time.Now())
	if err != nil {
		fatal(err.Error())
	}
	fmt.Println(token)
}

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	baseURL := fs.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "gateway base url")
	email := fs.String("email", getenv("ADMIN_EMAIL", ""), "admin email")
	password := fs.String("password", getenv("ADMIN_PASSWORD", ""), "admin password")
	_ = fs.Parse(args)

	if strings.TrimSpace(*email) == "" || *password == "" {
		fatal("email and password are required")
	}
	body, err := json.Marshal(map[string]string{"email": *email, "password": *password})
	if err != nil {
		fatal(err.Error())
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fatal(err.Error())
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, strings.TrimSpace(string(out)))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func usage() {
	fatal("usage: adminctl <hash|token|login> [flags]")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
