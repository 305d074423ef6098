package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vendoria/commerce-service/internal/config"
)

const migrationsDir = "internal/db/migrations"

var (
	flags = flag.NewFlagSet("migrate", flag.ExitOnError)
	dir   = flags.String("dir", migrationsDir, "directory with migration files")
)

// Schema migrations for the commerce service. The database target comes from
// the same DB_* environment variables the server reads, so the two can never
// drift apart.
func main() {
	flags.Usage = usage
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) < 1 {
		flags.Usage()
		return
	}
	command := args[0]

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("connect to database %q: %v", cfg.Database.Database, err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	if err := goose.Run(command, db, *dir, args[1:]...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}
}

func usage() {
	fmt.Print(`Usage: migrate [-dir DIR] COMMAND

Applies schema migrations for the commerce database. Connection settings come
from the DB_* environment variables (see internal/config).

Commands:
    up                   Migrate the DB to the most recent version available
    up-by-one            Migrate the DB up by 1
    up-to VERSION        Migrate the DB to a specific VERSION
    down                 Roll back the version by 1
    down-to VERSION      Roll back to a specific VERSION
    status               Dump the migration status for the current DB
    version              Print the current version of the database
    create NAME [sql|go] Creates new migration file with the current timestamp
`)
}
