// Command jwt-mint prints a signed bearer token for local development.
// The secret must match the server's auth.jwt_secret setting.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	var currentUser, err = user.Current()
	if err != nil {
		currentUser = &user.User{Username: "user-1"}
	}

	secret := flag.String("secret", os.Getenv("STGQL_AUTH_JWT_SECRET"), "HMAC signing secret")
	issuer := flag.String("issuer", "", "JWT issuer (optional)")
	subject := flag.String("subject", currentUser.Username, "JWT subject (user identifier)")
	email := flag.String("email", "", "email claim")
	role := flag.String("role", "EMPLOYEE", "role claim (ADMIN or EMPLOYEE)")
	expires := flag.Duration("expires", time.Hour, "Token lifetime (e.g. 1h)")
	flag.Parse()

	if *secret == "" {
		exitErr(fmt.Errorf("a signing secret is required (flag -secret or STGQL_AUTH_JWT_SECRET)"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *subject,
		"iat": now.Unix(),
		"exp": now.Add(*expires).Unix(),
		"nbf": now.Add(-1 * time.Minute).Unix(),
	}
	if *issuer != "" {
		claims["iss"] = *issuer
	}
	if *email != "" {
		claims["email"] = *email
	}
	if *role != "" {
		claims["role"] = *role
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		exitErr(err)
	}

	fmt.Println(signed)
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
