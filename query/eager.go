package query

import (
	"crudcore/metadata"
	"crudcore/querylang"

	"github.com/jinzhu/gorm"
)

// EagerLoad is one validated `with` request: a declared relation plus an
// optional validated column subset.
type EagerLoad struct {
	Name     string
	Relation Relation
	Columns  []string
}

// CompileEagerLoads honors only relation names declared by the descriptor;
// everything else in the `with` parameter is dropped. Requested relation
// columns are validated against the relation's table the same way top level
// selected fields are.
func CompileEagerLoads(db *gorm.DB, desc Descriptor, withParam string) []EagerLoad {
	if withParam == "" {
		return nil
	}

	loads := []EagerLoad{}
	for _, assignment := range querylang.ParseAssignments(withParam) {
		relation, declared := desc.Relations[assignment.Name]
		if !declared {
			continue
		}

		load := EagerLoad{Name: assignment.Name, Relation: relation}
		if len(assignment.Values) > 0 {
			columns := []string{}
			for _, column := range assignment.Values {
				if metadata.HasColumn(db, relation.TableName, column) {
					columns = append(columns, column)
				}
			}
			if len(columns) > 0 {
				// the related id is required to attach rows to their parents
				if !contains(columns, "id") {
					columns = append(columns, "id")
				}
				load.Columns = columns
			}
		}
		loads = append(loads, load)
	}
	return loads
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
