// Command migrate applies, rolls back or reports the database migrations
// using the same configuration sources as the server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/emphub/internal/flagx"
	"github.com/dmitrijs2005/emphub/internal/logging"
	"github.com/dmitrijs2005/emphub/internal/server/config"
	"github.com/dmitrijs2005/emphub/internal/server/repositories/repomanager"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	command := fs.String("command", "up", "migrate command (up|status|down)")
	timeout := fs.Duration("timeout", time.Minute, "command timeout")
	target := fs.Int64("target", -1, "target version for down (default: one step)")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-command", "-timeout", "-target"}))

	cfg := config.LoadConfig()
	log := logging.NewJSON(os.Stdout, cfg.LogLevel).With("module", "migrate")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repomanager.Prepare(); err != nil {
		log.Error(ctx, "failed to configure migrations", "error", err)
		os.Exit(1)
	}

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "down":
		if *target >= 0 {
			err = goose.DownToContext(ctx, db, ".", *target)
		} else {
			err = goose.DownContext(ctx, db, ".")
		}
	default:
		log.Error(ctx, "unsupported command", "command", *command)
		os.Exit(1)
	}
	if err != nil {
		log.Error(ctx, "migration command failed", "command", *command, "error", err)
		os.Exit(1)
	}

	log.Info(ctx, "migration command completed", "command", *command)
}
