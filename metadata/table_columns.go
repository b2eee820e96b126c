package metadata

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

const ColumnsCacheTTL = 24 * time.Hour

var columnsCache = cache.New(ColumnsCacheTTL, 10*time.Minute)

var LoadTableColumnsFunc = loadTableColumns

// Columns returns the column name set of a table, introspecting the live
// schema on the first request after cache expiry. There is no invalidation
// hook beyond expiry and Flush; schema changes are deploy-time events.
func Columns(db *gorm.DB, tableName string) (map[string]bool, error) {
	if value, found := columnsCache.Get(tableName); found {
		if columns, ok := value.(map[string]bool); ok {
			return columns, nil
		}
	}

	columns, err := LoadTableColumnsFunc(db, tableName)
	if err != nil {
		return nil, err
	}
	columnsCache.Set(tableName, columns, cache.DefaultExpiration)
	return columns, nil
}

func HasColumn(db *gorm.DB, tableName, columnName string) bool {
	columns, err := Columns(db, tableName)
	if err != nil {
		return false
	}
	return columns[columnName]
}

func Flush() {
	columnsCache.Flush()
}

func loadTableColumns(db *gorm.DB, tableName string) (map[string]bool, error) {
	rows, err := db.Raw(
		"SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?",
		tableName).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
