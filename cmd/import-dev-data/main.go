package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"natours-api/configs"
	"natours-api/internal/db"
	"natours-api/internal/repository"
	"natours-api/internal/seed"
	"natours-api/internal/utils"
)

func main() {
	var (
		doImport = flag.Bool("import", false, "insert the tours from -file")
		doDelete = flag.Bool("delete", false, "delete every tour, secret ones included")
		file     = flag.String("file", seed.DefaultFile, "seed data file")
		envFile  = flag.String("env", "config.env", "env file")
	)
	flag.Parse()

	if *doImport == *doDelete {
		fmt.Fprintln(os.Stderr, "usage: import-dev-data --import|--delete [--file path]")
		os.Exit(2)
	}

	if err := run(*envFile, *file, *doImport); err != nil {
		log.Printf("import-dev-data: %v", err)
		os.Exit(1)
	}
}

func run(envFile, file string, doImport bool) error {
	cfg, err := configs.LoadConfig(envFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := db.Connect(ctx, cfg.DatabaseURI())
	if err != nil {
		return err
	}
	defer db.Disconnect(context.Background(), client)

	repo := repository.NewTourRepository(db.GetCollection(client, cfg.DBName, "tours"))
	audit := &utils.Logger{Collection: db.GetCollection(client, cfg.DBName, "audit_logs")}

	if !doImport {
		n, err := seed.Delete(ctx, repo, audit)
		if err != nil {
			return err
		}
		log.Printf("deleted %d tours", n)
		return nil
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := seed.Import(ctx, repo, f, audit)
	if err != nil {
		return err
	}
	log.Printf("inserted %d tours", n)
	return nil
}
