package checks

import (
	"fmt"
	"sort"
	"strings"

	"world-sync/core/database"
	"world-sync/core/models"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies the database schema using the GORM models as the source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		actual, err := database.GetTableColumns(db, table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}
		if len(actual) == 0 {
			tbl.Status = "missing"
			report.Matched = false
			report.Tables[table] = tbl
			continue
		}

		columns := make(map[string]database.ColumnInfo, len(actual))
		for _, col := range actual {
			columns[col.Field] = col
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			col, ok := columns[field.DBName]
			if !ok {
				tbl.MissingColumns = append(tbl.MissingColumns, field.DBName)
				continue
			}

			// Only explicit type tags are compared
			want := strings.ToLower(field.TagSettings["TYPE"])
			if want != "" && !strings.Contains(col.Type, want) {
				tbl.TypeMismatches = append(tbl.TypeMismatches,
					fmt.Sprintf("%s: expected %s, got %s", field.DBName, want, col.Type))
			}
		}

		if len(tbl.MissingColumns) > 0 || len(tbl.TypeMismatches) > 0 {
			sort.Strings(tbl.MissingColumns)
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}
