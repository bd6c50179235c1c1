// Package main is the Boutique terminal client: a storefront and admin
// console that keeps its catalog, cart and session in a local Badger store
// and talks to the API server for everything authoritative.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkordes/boutique/internal/client"
	"github.com/pkordes/boutique/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describeError(err))
		os.Exit(1)
	}
}

// describeError turns API sentinels into hints a shopper can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "not logged in or session expired; run `shop login`"
	case errors.Is(err, client.ErrRateLimited):
		return "too many attempts, try again in a minute"
	case errors.Is(err, client.ErrTransport):
		return fmt.Sprintf("cannot reach the API (%v)", err)
	default:
		return err.Error()
	}
}
