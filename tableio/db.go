package tableio

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/confidence_charts/domain/models"
)

// OpenDB connects over the mysql protocol; ClickHouse exposes it as well.
func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	return db, nil
}

// resultsQuery selects the whole results table, ordered for stable charts.
func resultsQuery(db *gorm.DB, table string) (*gorm.DB, error) {
	if table == "" || replaceSpecialSymbols(table) != table {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return db.Table(table).Select("*"), nil
}

// LoadFromDB reads a results table with the same column conventions as ReadCSV.
func LoadFromDB(db *gorm.DB, table string, opts Options) (models.ResultTable, error) {
	tx, err := resultsQuery(db, table)
	if err != nil {
		return models.ResultTable{}, err
	}
	rows, err := tx.Rows()
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("error querying %s: %w", table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return models.ResultTable{}, err
	}
	var records [][]string
	values := make([]sql.NullString, len(headers))
	pointers := make([]interface{}, len(headers))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return models.ResultTable{}, fmt.Errorf("error scanning %s: %w", table, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return models.ResultTable{}, err
	}
	return BuildTable(headers, records, opts)
}
