// qbctl is a command line companion for the QuantBasket platform. It drives
// the same client core the web dashboard embeds: sessions persist across
// invocations, data loads go through the dashboard store, and mutations run
// through the action coordinator.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/quantbasket/quantbasket/internal/action"
	"github.com/quantbasket/quantbasket/internal/client"
	"github.com/quantbasket/quantbasket/internal/config"
	"github.com/quantbasket/quantbasket/internal/logging"
	"github.com/quantbasket/quantbasket/internal/platform"
	"github.com/quantbasket/quantbasket/internal/session"
)

const usage = `usage: qbctl <command> [flags]

commands:
  signup       register an account and sign in
  login        sign in with email and password
  oauth-url    print the OAuth authorize URL for a provider
  logout       sign out and clear the cached session
  whoami       show the current session state
  route        evaluate the route guard for a path
  dashboard    load and print profile, tokens and portfolio
  coins        print the coin catalog
  purchase     buy tokens
  impact       report a community impact action
  redeem       redeem community tokens for a benefit
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qbctl: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, "qbctl")
	cache := session.NewTokenCache(cfg.SessionFile)
	c := client.NewHTTP(cfg.PlatformURL, cache, cfg.Redirect, logger)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, c, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "qbctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, command string, args []string) error {
	// Every command starts from the restored session; a failed restore
	// resolves to anonymous and most commands still work.
	if err := c.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "qbctl: session restore failed: %v\n", err)
	}

	switch command {
	case "signup":
		return cmdSignup(ctx, c, args)
	case "login":
		return cmdLogin(ctx, c, args)
	case "oauth-url":
		return cmdOAuthURL(ctx, c, args)
	case "logout":
		return c.Sessions.SignOut(ctx)
	case "whoami":
		return cmdWhoami(c)
	case "route":
		return cmdRoute(c, args)
	case "dashboard":
		return cmdDashboard(ctx, c)
	case "coins":
		return cmdCoins(ctx, c)
	case "purchase":
		return cmdPurchase(ctx, c, args)
	case "impact":
		return cmdImpact(ctx, c, args)
	case "redeem":
		return cmdRedeem(ctx, c, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdSignup(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("signup", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	name := flags.String("name", "", "full name")
	if err := flags.Parse(args); err != nil {
		return err
	}
	identity, err := c.Sessions.SignUp(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	fmt.Printf("signed up as %s (%s)\n", identity.Email, identity.UserID)
	return nil
}

func cmdLogin(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	if err := flags.Parse(args); err != nil {
		return err
	}
	identity, err := c.Sessions.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", identity.Email, identity.UserID)
	return nil
}

func cmdOAuthURL(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("oauth-url", pflag.ContinueOnError)
	provider := flags.String("provider", "google", "oauth provider")
	hostname := flags.String("hostname", "localhost", "hostname the browser is on")
	if err := flags.Parse(args); err != nil {
		return err
	}
	url, err := c.Sessions.SignInWithOAuth(ctx, *provider, *hostname)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}

func cmdWhoami(c *client.Client) error {
	status := c.Session()
	if status.Identity == nil {
		fmt.Printf("state: %s\n", status.State)
		return nil
	}
	fmt.Printf("state: %s\nuser: %s\nemail: %s\n", status.State, status.Identity.UserID, status.Identity.Email)
	return nil
}

func cmdRoute(c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("route", pflag.ContinueOnError)
	path := flags.String("path", "/dashboard", "path to evaluate")
	if err := flags.Parse(args); err != nil {
		return err
	}
	result := c.ProtectedRoute(*path)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdDashboard(ctx context.Context, c *client.Client) error {
	status := c.Session()
	if status.Identity == nil {
		return fmt.Errorf("not signed in")
	}
	if err := c.Dashboard.Load(ctx, status.Identity.UserID); err != nil {
		fmt.Fprintf(os.Stderr, "qbctl: partial load: %v\n", err)
	}
	out := map[string]any{"tokens": c.Dashboard.Tokens()}
	if profile, ok := c.Dashboard.Profile(); ok {
		out["profile"] = profile
	}
	if summary, ok := c.Dashboard.Summary(); ok {
		out["portfolio"] = summary
	}
	return printJSON(out)
}

func cmdCoins(ctx context.Context, c *client.Client) error {
	if err := c.Dashboard.LoadCatalog(ctx); err != nil {
		return err
	}
	return printJSON(c.Dashboard.Coins())
}

func cmdPurchase(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("purchase", pflag.ContinueOnError)
	category := flags.String("category", "community", "token category")
	symbol := flags.String("symbol", "", "token symbol")
	amount := flags.Float64("amount", 0, "amount to buy")
	if err := flags.Parse(args); err != nil {
		return err
	}
	cat, err := platform.ParseCategory(*category)
	if err != nil {
		return err
	}
	return c.DispatchAction(ctx, action.KindPurchase, action.Payload{
		Category: cat,
		Symbol:   *symbol,
		Amount:   *amount,
	})
}

func cmdImpact(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("impact", pflag.ContinueOnError)
	impactType := flags.String("type", "", "impact type, e.g. solar")
	description := flags.String("description", "", "what was done")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return c.DispatchAction(ctx, action.KindImpact, action.Payload{
		Symbol:      *impactType,
		Description: *description,
	})
}

func cmdRedeem(ctx context.Context, c *client.Client, args []string) error {
	flags := pflag.NewFlagSet("redeem", pflag.ContinueOnError)
	benefit := flags.String("benefit", "", "benefit type, e.g. event_pass")
	symbol := flags.String("symbol", "", "community token symbol to spend")
	cost := flags.Float64("cost", 0, "token cost")
	if err := flags.Parse(args); err != nil {
		return err
	}
	return c.DispatchAction(ctx, action.KindRedeem, action.Payload{
		Category:    platform.CategoryCommunity,
		BenefitType: *benefit,
		Symbol:      *symbol,
		Amount:      *cost,
	})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
