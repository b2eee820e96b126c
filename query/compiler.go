package query

import (
	"crudcore/authority"
	"crudcore/metadata"
	"crudcore/querylang"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// CompileList builds the filtered, sorted and bounded list query for an
// entity from a raw parameter mapping. Every column referenced by the raw
// parameters is validated against the schema metadata; unknown columns are
// dropped silently. The ownership filter, when the decision is ownership
// scoped, is injected before any user supplied predicate and cannot be
// overridden by request input.
func CompileList(db *gorm.DB, desc Descriptor, raw map[string]string,
	langID types.ID, principalID types.ID, decision authority.GrantDecision) *gorm.DB {

	q := db.Table(desc.TableName)

	q = q.Select(compileSelect(db, desc, raw[querylang.ParamSelectedFields], decision.ExcludedFields))

	if desc.Translatable {
		q = q.Joins("LEFT JOIN "+desc.TranslationTableName()+
			" ON "+desc.TranslationTableName()+"."+desc.TranslationForeignKey()+" = "+desc.TableName+".id"+
			" AND "+desc.TranslationTableName()+".language_id = ?", langID)
	}

	if decision.OwnershipScoped {
		q = q.Where(desc.TableName+"."+desc.OwnerColumn()+" = ?", principalID)
	}

	q = compileOrderBy(db, q, desc, raw[querylang.ParamOrderByField])
	q = compileNullChecks(db, q, desc, raw)
	q = compileRangeFilters(db, q, desc, raw)
	q = compileBounds(q, raw)
	q = compileColumnFilters(db, q, desc, raw)

	return q
}

// CompileOne narrows the list query to a single entity id.
func CompileOne(db *gorm.DB, desc Descriptor, raw map[string]string,
	entityID types.ID, langID types.ID, principalID types.ID, decision authority.GrantDecision) *gorm.DB {

	return CompileList(db, desc, raw, langID, principalID, decision).
		Where(desc.TableName+".id = ?", entityID)
}

// compileSelect builds the select list: translation columns first, primary
// table columns last, so the primary table wins column name collisions when
// rows are scanned. Grant excluded fields are removed from the projection.
func compileSelect(db *gorm.DB, desc Descriptor, selectedFields string, excludedFields []string) string {
	if selectedFields != "" {
		if columns := validateSelectedColumns(db, desc, selectedFields, excludedFields); len(columns) > 0 {
			return joinColumns(columns)
		}
	}

	if len(excludedFields) > 0 {
		if columns := allColumnsExcept(db, desc, excludedFields); len(columns) > 0 {
			return joinColumns(columns)
		}
	}

	if desc.Translatable {
		// primary .* last, it must win collisions
		return desc.TranslationTableName() + ".*, " + desc.TableName + ".*"
	}
	return desc.TableName + ".*"
}

func validateSelectedColumns(db *gorm.DB, desc Descriptor, selectedFields string, excludedFields []string) []string {
	excluded := map[string]bool{}
	for _, field := range excludedFields {
		excluded[field] = true
	}

	columns := []string{}
	for _, field := range querylang.SplitCommaList(selectedFields) {
		if excluded[field] {
			continue
		}
		// the id of the primary table wins over any translation id
		if field == "id" && desc.Translatable {
			columns = append(columns, desc.TableName+".id")
			continue
		}
		if desc.Translatable && metadata.HasColumn(db, desc.TranslationTableName(), field) {
			columns = append(columns, desc.TranslationTableName()+"."+field)
		}
		if metadata.HasColumn(db, desc.TableName, field) {
			columns = append(columns, desc.TableName+"."+field)
		}
	}
	return columns
}

func allColumnsExcept(db *gorm.DB, desc Descriptor, excludedFields []string) []string {
	excluded := map[string]bool{}
	for _, field := range excludedFields {
		excluded[field] = true
	}

	columns := []string{}
	if desc.Translatable {
		translationColumns, err := metadata.Columns(db, desc.TranslationTableName())
		if err != nil {
			return nil
		}
		for name := range translationColumns {
			if !excluded[name] && name != "id" {
				columns = append(columns, desc.TranslationTableName()+"."+name)
			}
		}
	}
	primaryColumns, err := metadata.Columns(db, desc.TableName)
	if err != nil {
		return nil
	}
	for name := range primaryColumns {
		if !excluded[name] {
			columns = append(columns, desc.TableName+"."+name)
		}
	}
	return columns
}

func joinColumns(columns []string) string {
	result := ""
	for i, column := range columns {
		if i > 0 {
			result += ", "
		}
		result += column
	}
	return result
}

// qualifyColumn resolves an unqualified column name against the entity and
// its translation table, primary table preferred. Empty result means the
// column exists in neither table.
func qualifyColumn(db *gorm.DB, desc Descriptor, column string) string {
	if metadata.HasColumn(db, desc.TableName, column) {
		return desc.TableName + "." + column
	}
	if desc.Translatable && metadata.HasColumn(db, desc.TranslationTableName(), column) {
		return desc.TranslationTableName() + "." + column
	}
	return ""
}

func compileOrderBy(db *gorm.DB, q *gorm.DB, desc Descriptor, orderBy string) *gorm.DB {
	if orderBy == "" {
		return q
	}
	for _, clause := range querylang.ParseOrderBy(orderBy) {
		column := qualifyColumn(db, desc, clause.Column)
		if column == "" {
			continue
		}
		direction := " ASC"
		if clause.Descending {
			direction = " DESC"
		}
		q = q.Order(column + direction)
	}
	return q
}

func compileNullChecks(db *gorm.DB, q *gorm.DB, desc Descriptor, raw map[string]string) *gorm.DB {
	if fields := raw[querylang.ParamWhereNotNull]; fields != "" {
		for _, field := range querylang.SplitCommaList(fields) {
			if column := qualifyColumn(db, desc, field); column != "" {
				q = q.Where(column + " IS NOT NULL")
			}
		}
	}
	if fields := raw[querylang.ParamWhereNull]; fields != "" {
		for _, field := range querylang.SplitCommaList(fields) {
			if column := qualifyColumn(db, desc, field); column != "" {
				q = q.Where(column + " IS NULL")
			}
		}
	}
	return q
}

func compileRangeFilters(db *gorm.DB, q *gorm.DB, desc Descriptor, raw map[string]string) *gorm.DB {
	if between := raw[querylang.ParamWhereBetween]; between != "" {
		for _, assignment := range querylang.ParseAssignments(between) {
			column := qualifyColumn(db, desc, assignment.Name)
			// malformed ranges degrade to no predicate
			if column == "" || len(assignment.Values) != 2 {
				continue
			}
			q = q.Where(column+" BETWEEN ? AND ?", assignment.Values[0], assignment.Values[1])
		}
	}
	if in := raw[querylang.ParamWhereIn]; in != "" {
		for _, assignment := range querylang.ParseAssignments(in) {
			column := qualifyColumn(db, desc, assignment.Name)
			if column == "" || len(assignment.Values) == 0 {
				continue
			}
			q = q.Where(column+" IN (?)", assignment.Values)
		}
	}
	if notIn := raw[querylang.ParamWhereNotIn]; notIn != "" {
		for _, assignment := range querylang.ParseAssignments(notIn) {
			column := qualifyColumn(db, desc, assignment.Name)
			if column == "" || len(assignment.Values) == 0 {
				continue
			}
			q = q.Where(column+" NOT IN (?)", assignment.Values)
		}
	}
	return q
}

func compileBounds(q *gorm.DB, raw map[string]string) *gorm.DB {
	if limit := raw[querylang.ParamLimit]; limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n >= 0 {
			q = q.Limit(n)
		}
	}
	if offset := raw[querylang.ParamOffset]; offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			q = q.Offset(n)
		}
	}
	return q
}

// compileColumnFilters treats every non reserved key naming an existing
// column as an equality or operator prefixed predicate. Unknown keys never
// reach the storage layer.
func compileColumnFilters(db *gorm.DB, q *gorm.DB, desc Descriptor, raw map[string]string) *gorm.DB {
	for name, value := range raw {
		if querylang.IsReservedParam(name) {
			continue
		}
		column := qualifyColumn(db, desc, name)
		if column == "" {
			continue
		}
		op, operand := querylang.ParseOperatorValue(value)
		switch op {
		case querylang.OpLike:
			q = q.Where(column+" LIKE ?", "%"+operand+"%")
		default:
			q = q.Where(column+" "+string(op)+" ?", operand)
		}
	}
	return q
}
