package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tutora/tutora-backend/internal/config"
	"github.com/tutora/tutora-backend/internal/pkg/database"
	"github.com/tutora/tutora-backend/internal/pkg/migrations"
)

const usage = `Usage: migrate <command> [args]

Commands:
  up         apply all pending migrations
  down       roll back the latest migration
  status     print the state of every migration
  redo       roll back and re-apply the latest migration
  reset      roll back every migration
  version    print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	switch command {
	case "up", "down", "status", "redo", "reset", "version":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(context.Background(), db, command, flag.Args()[1:]...); err != nil {
		fmt.Println("Migration failed:", err)
		db.Close()
		os.Exit(1)
	}
}
