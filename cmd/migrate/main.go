package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"stikpet/adapters/postgres"
	"stikpet/domain/analysis"
	"stikpet/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

const usage = "Usage: migrate up | reset | import <analyses_dir>  (DATABASE_URL from env or .env)"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()

	switch os.Args[1] {
	case "up":
		if err := runner.Run(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Printf("Schema at version %s", runner.Version())
	case "reset":
		if err := runner.Reset(ctx, db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		if err := runner.Run(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Printf("Schema reset to version %s", runner.Version())
	case "import":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		if err := runner.Run(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		importAnalyses(ctx, db, os.Args[2])
	default:
		log.Fatal(usage)
	}
}

// importAnalyses loads analyses saved by `stikpet-cli run --save` into the database
func importAnalyses(ctx context.Context, db *sqlx.DB, dir string) {
	repo := postgres.NewAnalysisRepository(db)

	files, err := findAnalysisFiles(dir)
	if err != nil {
		log.Fatalf("Failed to find analysis files: %v", err)
	}
	log.Printf("Found %d analysis files to import", len(files))

	imported, skipped := 0, 0
	for _, file := range files {
		a, err := loadAnalysisFromFile(file)
		if err != nil {
			log.Printf("Failed to load analysis from %s: %v", file, err)
			skipped++
			continue
		}
		if err := repo.Save(ctx, a); err != nil {
			log.Printf("Failed to save analysis %s: %v", a.ID, err)
			skipped++
			continue
		}
		imported++
	}

	log.Printf("Import complete: %d imported, %d skipped", imported, skipped)
}

func findAnalysisFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadAnalysisFromFile(filePath string) (*analysis.Analysis, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var a analysis.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.ID == "" || a.Procedure == "" {
		return nil, os.ErrInvalid
	}
	return &a, nil
}
