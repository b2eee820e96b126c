package crud

import (
	"crudcore/metadata"
	"crudcore/query"
	"crudcore/querylang"
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/gorm"
)

// Record is one entity row, merged with its translation when one exists.
type Record map[string]interface{}

// scanRecords reads a compiled query into generic records. Duplicate column
// names overwrite in select order, which is what makes the primary table win
// over the translation columns (the compiler selects the primary .* last).
func scanRecords(q *gorm.DB) ([]Record, error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := Record{}
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// mysql driver returns []byte for text columns
func normalizeValue(value interface{}) interface{} {
	if bytes, ok := value.([]byte); ok {
		return string(bytes)
	}
	return value
}

// filterPayload keeps only payload keys naming existing columns of the given
// table, dropping reserved parameter names. Unknown keys are ignored rather
// than rejected.
func filterPayload(db *gorm.DB, tableName string, payload map[string]interface{}) map[string]interface{} {
	filtered := map[string]interface{}{}
	for name, value := range payload {
		if querylang.IsReservedParam(name) {
			continue
		}
		if metadata.HasColumn(db, tableName, name) {
			filtered[name] = value
		}
	}
	return filtered
}

// mergeAttributes overlays translation attributes under the primary ones:
// the primary row wins key collisions and protected translation keys are
// stripped from the merged output.
func mergeAttributes(primary map[string]interface{}, translation map[string]interface{}, protectedKeys []string) Record {
	protected := map[string]bool{}
	for _, key := range protectedKeys {
		protected[key] = true
	}

	merged := Record{}
	for name, value := range translation {
		if protected[name] {
			continue
		}
		merged[name] = value
	}
	for name, value := range primary {
		merged[name] = value
	}
	return merged
}

func insertRow(db *gorm.DB, tableName string, row map[string]interface{}) error {
	if len(row) == 0 {
		return fmt.Errorf("nothing to insert into %s", tableName)
	}

	columns := make([]string, 0, len(row))
	for name := range row {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	placeholders := make([]string, 0, len(columns))
	values := make([]interface{}, 0, len(columns))
	for _, name := range columns {
		placeholders = append(placeholders, "?")
		values = append(values, row[name])
	}

	statement := "INSERT INTO " + tableName +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	return db.Exec(statement, values...).Error
}

// attachEagerLoads resolves validated `with` requests with one additional
// read per relation and nests the related record under the relation name.
func attachEagerLoads(db *gorm.DB, records []Record, loads []query.EagerLoad) error {
	for _, load := range loads {
		foreignKey := load.Relation.ForeignKey

		ids := []interface{}{}
		seen := map[string]bool{}
		for _, record := range records {
			value, found := record[foreignKey]
			if !found || value == nil {
				continue
			}
			key := fmt.Sprint(value)
			if !seen[key] {
				seen[key] = true
				ids = append(ids, value)
			}
		}
		if len(ids) == 0 {
			continue
		}

		q := db.Table(load.Relation.TableName).Where("id IN (?)", ids)
		if len(load.Columns) > 0 {
			q = q.Select(strings.Join(load.Columns, ", "))
		}
		related, err := scanRecords(q)
		if err != nil {
			return err
		}

		relatedByID := map[string]Record{}
		for _, r := range related {
			relatedByID[fmt.Sprint(r["id"])] = r
		}
		for _, record := range records {
			value, found := record[foreignKey]
			if !found || value == nil {
				continue
			}
			if r, matched := relatedByID[fmt.Sprint(value)]; matched {
				record[load.Name] = r
			}
		}
	}
	return nil
}
