package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	app := &cli.App{
		Name:   "koodos",
		Usage:  "KOODOS content API, SEO crawler and meta-suggestion pipeline",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the embedded database migrations",
				Action: migrateAction,
			},
			{
				Name:  "crawl",
				Usage: "Crawl a site once and record pages, issues and suggestions",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "base-url", Usage: "site root to crawl (defaults to CRAWL_BASE_URL)"},
					&cli.IntFlag{Name: "max-pages", Usage: "page limit (defaults to CRAWL_MAX_PAGES)"},
				},
				Action: crawlAction,
			},
			{
				Name:  "token",
				Usage: "Mint a development JWT signed with JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sub", Usage: "subject (user id)", Required: true},
					&cli.StringFlag{Name: "role", Usage: "editor or admin", Value: "editor"},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: 24 * time.Hour},
				},
				Action: tokenAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("koodos: %v", err)
	}
}
