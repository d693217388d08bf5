package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"studyquest/internal/codec"
	"studyquest/internal/config"
	"studyquest/internal/database"
	"studyquest/internal/repository"
)

func main() {
	exportPath := flag.String("export", "", "export the household state to a blob file")
	importPath := flag.String("import", "", "import a blob file into the household state")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usage: backup -export <file> | -import <file>")
		os.Exit(2)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := repository.NewStateRepository(repository.NewDocumentRepository(db))

	if *exportPath != "" {
		if err := runExport(repo, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	if err := runImport(repo, *importPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

func runExport(repo *repository.StateRepository, path string) error {
	stats, err := repo.LoadStats()
	if err != nil {
		return err
	}
	prizes, err := repo.LoadPrizes()
	if err != nil {
		return err
	}
	worksheets, err := repo.LoadWorksheets()
	if err != nil {
		return err
	}

	blob, err := codec.ExportBlob(stats, prizes, worksheets)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(blob), 0o600); err != nil {
		return err
	}

	log.Printf("Exported household state to %s (%d prizes, %d worksheets)", path, len(prizes), len(worksheets))
	return nil
}

func runImport(repo *repository.StateRepository, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	payload, err := codec.ImportBlob(string(raw))
	if err != nil {
		return err
	}

	stats, err := repo.LoadStats()
	if err != nil {
		return err
	}
	prizes, err := repo.LoadPrizes()
	if err != nil {
		return err
	}
	worksheets, err := repo.LoadWorksheets()
	if err != nil {
		return err
	}

	if payload.Stats != nil {
		stats = codec.MergeStats(payload.Stats)
	}
	if payload.Prizes != nil {
		prizes = payload.Prizes
	}
	if payload.Worksheets != nil {
		worksheets = payload.Worksheets
	}

	if err := repo.SaveAggregates(stats, prizes, worksheets); err != nil {
		return err
	}

	log.Printf("Imported household state from %s (%d prizes, %d worksheets)", path, len(prizes), len(worksheets))
	return nil
}
