package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"estate-import/internal/config"
	"estate-import/internal/database"
	"estate-import/internal/models"
	"estate-import/internal/repository"
	"estate-import/internal/service"

	"github.com/google/uuid"
)

func main() {
	filePath := flag.String("file", "", "Path to the Excel workbook to import")
	kind := flag.String("kind", models.ImportKindCreateOrUpdate, "Import kind: update, create_or_update or price_only")
	mappingID := flag.Int("mapping", 0, "Field mapping ID (0 uses the default mapping)")
	dryRun := flag.Bool("dry-run", false, "Parse and validate without persisting anything")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file is required")
	}
	if !models.ValidImportKind(*kind) {
		log.Fatalf("invalid kind %q: must be update, create_or_update or price_only", *kind)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewMySQL(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	importRepo := repository.NewImportRepository(db)
	mappingRepo := repository.NewMappingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	excelService := service.NewExcelService()
	validator := service.NewValidationService(importRepo)
	reconciler := service.NewReconcileService(propertyRepo, importRepo)
	importService := service.NewImportService(excelService, validator, reconciler,
		importRepo, mappingRepo, cfg.PreviewRows)

	if *dryRun {
		runDryRun(importService, mappingRepo, *filePath, *mappingID)
		return
	}

	var mappingRef *int64
	if *mappingID > 0 {
		id := int64(*mappingID)
		mappingRef = &id
	}

	run := &models.ImportRun{
		RunCode:   fmt.Sprintf("IMP-%s", uuid.New().String()[:8]),
		Filename:  filepath.Base(*filePath),
		FilePath:  *filePath,
		Kind:      *kind,
		MappingID: mappingRef,
		Status:    models.RunStatusUploaded,
	}
	if err := importRepo.CreateRun(run); err != nil {
		log.Fatalf("Failed to create import run: %v", err)
	}

	if err := importService.ProcessRun(run.ID); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	run, err = importRepo.GetRunByID(run.ID)
	if err != nil {
		log.Fatalf("Failed to reload import run: %v", err)
	}

	fmt.Printf("Import run %s %s\n", run.RunCode, run.Status)
	fmt.Printf("  Total rows:      %d\n", run.TotalRows)
	fmt.Printf("  Processed rows:  %d\n", run.ProcessedRows)
	fmt.Printf("  Successful rows: %d\n", run.SuccessfulRows)
	fmt.Printf("  Failed rows:     %d\n", run.FailedRows)
	for _, ve := range run.ValidationErrors {
		fmt.Printf("  Row %d [%s]: %s\n", ve.Row, ve.Field, ve.Message)
	}
}

func runDryRun(importService *service.ImportService, mappingRepo *repository.MappingRepository, filePath string, mappingID int) {
	var mapping *models.FieldMapping
	if mappingID > 0 {
		var err error
		mapping, err = mappingRepo.GetByID(mappingID)
		if err != nil {
			log.Fatalf("Failed to load mapping %d: %v", mappingID, err)
		}
	}

	parseResult, validation, err := importService.DryRun(filePath, mapping)
	if err != nil {
		log.Fatalf("Dry run failed: %v", err)
	}

	fmt.Printf("Dry run of %s\n", filePath)
	fmt.Printf("  Total rows:   %d\n", parseResult.TotalRows)
	fmt.Printf("  Valid rows:   %d\n", len(validation.ValidData))
	fmt.Printf("  Invalid rows: %d\n", validation.TotalErrors)
	for _, ve := range validation.Errors {
		fmt.Printf("  Row %d [%s]: %s\n", ve.Row, ve.Field, ve.Message)
	}
}
