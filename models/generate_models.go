package models

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

/*
Column Mismatch Report Usage:

Reports database columns that no field of the corresponding Go model maps to.

	GENERATE_COLUMN_REPORT=true go run .

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Found 1 columns not accounted for in model:
  - updated_at

--- Table: achievements ---
All columns are accounted for in the model.
*/

// All lists the models owned by this service, in migration order.
func All() []any {
	return []any{&Project{}, &Achievement{}}
}

// GenerateModels writes typed query helpers for the record models into ./generated.
func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	db = db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Project{}, Achievement{})

	GenerateColumnMismatchReport(db)

	g.Execute()
	fmt.Println("Model generation complete!")
	return nil
}

// GenerateColumnMismatchReport prints database columns that aren't accounted for in Go models
func GenerateColumnMismatchReport(db *gorm.DB) int {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	totalMismatches := 0
	for _, model := range All() {
		modelFields, tableName, err := modelColumns(db, model)
		if err != nil {
			fmt.Printf("Error parsing model %T: %v\n", model, err)
			continue
		}

		fmt.Printf("\n--- Table: %s ---\n", tableName)

		dbColumns, err := tableColumns(db, tableName)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Printf("Table does not exist yet (will be created during migration)\n")
			} else {
				fmt.Printf("Error getting columns for table %s: %v\n", tableName, err)
			}
			continue
		}

		mismatches := findColumnMismatches(dbColumns, modelFields)
		if len(mismatches) > 0 {
			fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
			for _, col := range mismatches {
				fmt.Printf("  - %s\n", col)
			}
			totalMismatches += len(mismatches)
		} else {
			fmt.Println("All columns are accounted for in the model.")
		}
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches
}

// modelColumns resolves column names with the same naming strategy gorm uses for queries.
func modelColumns(db *gorm.DB, model any) ([]string, string, error) {
	s, err := schema.Parse(model, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, "", err
	}
	return s.DBNames, s.Table, nil
}

func tableColumns(db *gorm.DB, tableName string) ([]string, error) {
	if !db.Migrator().HasTable(tableName) {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	types, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	columns := make([]string, 0, len(types))
	for _, ct := range types {
		columns = append(columns, ct.Name())
	}
	return columns, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}

	return mismatches
}
