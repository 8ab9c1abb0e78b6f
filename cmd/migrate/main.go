package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pratik-mahalle/docbrief/internal/config"
	"github.com/pratik-mahalle/docbrief/internal/repository/postgres"
	"github.com/pratik-mahalle/docbrief/migrations"
)

func main() {
	dbCfg := config.LoadDatabase()

	db, err := postgres.New(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", dbCfg.Driver)

	applied, err := postgres.RunMigrations(context.Background(), db, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed after %d file(s): %v\n", applied, err)
		os.Exit(1)
	}

	if applied == 0 {
		fmt.Println("Database is up to date")
		return
	}
	fmt.Printf("Applied %d migration(s)\n", applied)
}
