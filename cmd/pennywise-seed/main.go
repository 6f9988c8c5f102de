// Seed tool for local development: fills the configured backend with
// plausible demo expenses so the UI has something to show.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"pennywise/internal/cli"
	"pennywise/internal/core"
)

var descriptions = map[string][]string{
	"Food":          {"groceries", "lunch", "coffee", "dinner out", "bakery"},
	"Transport":     {"bus ticket", "fuel", "train fare", "parking", "taxi"},
	"Housing":       {"rent share", "furniture", "repairs"},
	"Utilities":     {"electricity", "water bill", "internet", "phone plan"},
	"Healthcare":    {"pharmacy", "dental visit", "checkup"},
	"Entertainment": {"cinema", "concert", "streaming", "books"},
	"Shopping":      {"clothes", "shoes", "electronics", "gift"},
	"Other":         {"", "misc", "donation"},
}

func main() {
	count := flag.Int("count", 50, "number of expenses to generate")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	store, cleanup := cli.OpenStore(logger, cfg)
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Storage cleanup error", "error", err)
		}
	}()

	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash demo password", "error", err)
		os.Exit(1)
	}
	userID, err := store.EnsureUser(ctx, cfg.DemoUsername, cfg.DemoEmail, string(hash))
	if err != nil {
		logger.Error("Failed to ensure demo user", "error", err, "username", cfg.DemoUsername)
		os.Exit(1)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		logger.Error("Failed to list categories", "error", err)
		os.Exit(1)
	}
	if len(categories) == 0 {
		logger.Error("No categories available, nothing to seed against")
		os.Exit(1)
	}

	created := 0
	for i := 0; i < *count; i++ {
		cat := categories[gofakeit.Number(0, len(categories)-1)]

		desc := ""
		if opts, ok := descriptions[cat.Name]; ok && len(opts) > 0 {
			desc = opts[gofakeit.Number(0, len(opts)-1)]
		} else {
			desc = gofakeit.ProductName()
		}

		day := gofakeit.Number(0, 364)
		date := core.Today().AddDays(-day)

		e := core.Expense{
			UserID:      userID,
			Amount:      core.Money{Cents: int64(gofakeit.Number(100, 25000))},
			CategoryID:  cat.ID,
			Description: desc,
			Date:        date,
		}
		if err := e.Validate(); err != nil {
			logger.Error("Generated invalid expense", "error", err)
			continue
		}
		if _, err := store.CreateExpense(ctx, e); err != nil {
			logger.Error("Failed to insert expense", "error", err, "category_id", cat.ID)
			continue
		}
		created++
	}

	logger.Info("Seeding complete", "created", created, "requested", *count, "user_id", userID)
}
