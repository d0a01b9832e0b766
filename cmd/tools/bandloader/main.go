package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/payewise/takehome-api/internal/bands"
	"github.com/payewise/takehome-api/internal/tax"
)

const upsertBand = `
INSERT INTO tax_bands (
	tax_year,
	personal_allowance,
	income_limit_for_personal_allowance,
	basic_rate_limit,
	higher_rate_limit,
	ni_primary_threshold,
	ni_upper_earnings_limit
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tax_year) DO UPDATE SET
	personal_allowance = EXCLUDED.personal_allowance,
	income_limit_for_personal_allowance = EXCLUDED.income_limit_for_personal_allowance,
	basic_rate_limit = EXCLUDED.basic_rate_limit,
	higher_rate_limit = EXCLUDED.higher_rate_limit,
	ni_primary_threshold = EXCLUDED.ni_primary_threshold,
	ni_upper_earnings_limit = EXCLUDED.ni_upper_earnings_limit,
	updated_at = now();
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := bands.Migrate(dbURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	embedded, err := bands.NewEmbedded()
	if err != nil {
		log.Fatalf("Failed to load embedded band table: %v", err)
	}
	tables := embedded.All()

	log.Println("Loading tax bands...")
	for _, year := range tax.Years() {
		table, ok := tables[year]
		if !ok {
			log.Printf("No embedded bands for %s, skipping", year)
			continue
		}
		_, err := conn.Exec(ctx, upsertBand,
			table.Year.String(),
			table.PersonalAllowance.String(),
			table.IncomeLimitForPersonalAllowance.String(),
			table.BasicRateLimit.String(),
			table.HigherRateLimit.String(),
			table.NIPrimaryThreshold.String(),
			table.NIUpperEarningsLimit.String(),
		)
		if err != nil {
			log.Fatalf("Failed to upsert bands for %s: %v", year, err)
		}
		log.Printf("Upserted bands for %s", year)
	}

	log.Println("Band loading completed successfully!")
}
