package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"ms-tradein/internal/auth"
	"ms-tradein/internal/config"
	"ms-tradein/internal/database"
	"ms-tradein/internal/database/migrations"
	"ms-tradein/internal/logger"
	"ms-tradein/internal/models"
	"ms-tradein/internal/order"
)

const usage = `usage: tradein-admin <command> [flags]

commands:
  migrate up|down|version|to <n>   manage the schema
  seed                             place a demo order
  expire                           expire overdue counter offers once
  token -sub <id> -role <role>     mint an HS256 bearer token (needs JWT_SECRET)
  reset-token -subject <id>        issue a single-use reset token
  reset-token -consume <token>     redeem a reset token, printing its subject`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLoggerWithWriter(os.Stderr)
	ctx := context.Background()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "migrate":
		err = runMigrate(cfg, args, log)
	case "seed":
		err = runSeed(ctx, cfg, log)
	case "expire":
		err = runExpire(ctx, cfg, log)
	case "token":
		err = runToken(cfg, args)
	case "reset-token":
		err = runResetToken(ctx, cfg, args, log)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("ADMIN", fmt.Sprintf("%s: %v", cmd, err))
		os.Exit(1)
	}
}

func runMigrate(cfg *config.Config, args []string, log *logger.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("migrate needs one of up, down, version, to <n>")
	}
	opts := migrations.Options{MigrationsDir: cfg.Database.MigrationsDir}
	if args[0] == "up" {
		return migrations.Apply(cfg.Database.DSN, opts, log)
	}

	db, err := database.Open(context.Background(), cfg.Database, log)
	if err != nil {
		return err
	}
	// the migrate driver closes db
	runner := migrations.NewRunner(db.DB, opts, log)
	defer runner.Close()

	switch args[0] {
	case "down":
		return runner.MigrateDown()
	case "version":
		v, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("migrate to needs a version")
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("bad version %q: %w", args[1], err)
		}
		return runner.MigrateTo(uint(v))
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
}

func newService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*order.OrderService, func(), error) {
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	// no lock or notifier: admin runs are one-off and quiet
	svc := order.NewOrderService(order.NewBunStore(db), nil, nil, log, order.Options{
		Policy:        models.PaymentPolicy{AllowIndependentPaymentStatus: cfg.Payment.IndependentSetter},
		OfferTTL:      cfg.Offers.TTL,
		PublicBaseURL: cfg.Offers.PublicBaseURL,
	})
	return svc, func() { db.Close() }, nil
}

func runSeed(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	svc, done, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer done()

	o, err := svc.PlaceOrder(ctx, models.CheckoutRequest{
		DeviceID:        "iphone-13-128",
		DeviceName:      "Apple iPhone 13 128GB",
		RecyclerID:      "recycler001",
		RecyclerCompany: "Green Cycle Ltd",
		RecyclerEmail:   "offers@greencycle.example",
		CustomerName:    "Alice Wonderland",
		CustomerEmail:   "alice@example.com",
		Address:         "1 Rabbit Hole",
		City:            "London",
		Postcode:        "N1 1AA",
		Amount:          decimal.RequireFromString("320.00"),
		DeviceCondition: "good",
		Storage:         "128GB",
	})
	if err != nil {
		return err
	}
	fmt.Printf("order %s (%s) for recycler %s\n", o.OrderNumber, o.ID, o.RecyclerID)
	return nil
}

func runExpire(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	svc, done, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer done()

	n, err := svc.ExpireOverdueOffers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d counter offers expired\n", n)
	return nil
}

func runToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	sub := fs.String("sub", "", "subject (recycler or admin id)")
	role := fs.String("role", string(models.RoleRecycler), "admin, recycler or customer")
	email := fs.String("email", "", "email claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if *sub == "" {
		return fmt.Errorf("-sub is required")
	}

	claims := &auth.Claims{Email: *email, Roles: []string{*role}}
	claims.Subject = *sub
	claims.IssuedAt = jwt.NewNumericDate(time.Now())
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(*ttl))
	if _, err := claims.Actor(); err != nil {
		return err
	}

	signed, err := auth.NewHMACVerifier(cfg.Auth.JWTSecret).Sign(claims)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}

func runResetToken(ctx context.Context, cfg *config.Config, args []string, log *logger.Logger) error {
	fs := flag.NewFlagSet("reset-token", flag.ContinueOnError)
	subject := fs.String("subject", "", "user id or email the token resets")
	consume := fs.String("consume", "", "redeem this token and print its subject")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*subject == "") == (*consume == "") {
		return fmt.Errorf("reset-token needs exactly one of -subject or -consume")
	}

	client, err := auth.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return err
	}
	defer client.Close()
	store := auth.NewResetTokenStore(client, cfg.Auth.ResetTokenTTL)

	if *consume != "" {
		sub, err := store.Consume(ctx, *consume)
		if err != nil {
			return err
		}
		fmt.Println(sub)
		return nil
	}

	tok, err := store.Issue(ctx, *subject)
	if err != nil {
		return err
	}
	fmt.Printf("%s (valid for %s)\n", tok, cfg.Auth.ResetTokenTTL)
	return nil
}
