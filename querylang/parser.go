package querylang

import (
	"strings"
)

// Assignment is one parsed `name:v1,v2` segment of a composite parameter.
// Segments without a `:` produce a nil Values.
type Assignment struct {
	Name   string
	Values []string
}

// ParseAssignments parses the `name:v1,v2|name:v3` grammar used by
// where_in, where_not_in, where_between, order_by_field and with.
// Malformed segments degrade to name-only assignments, never an error.
func ParseAssignments(parametersString string) []Assignment {
	parsed := []Assignment{}
	for _, parameter := range strings.Split(parametersString, "|") {
		if parameter == "" {
			continue
		}
		idx := strings.Index(parameter, ":")
		if idx < 0 {
			parsed = append(parsed, Assignment{Name: parameter})
			continue
		}
		parsed = append(parsed, Assignment{
			Name:   parameter[0:idx],
			Values: strings.Split(parameter[idx+1:], ","),
		})
	}
	return parsed
}

type Operator string

const (
	OpEq   Operator = "="
	OpNe   Operator = "<>"
	OpLt   Operator = "<"
	OpGt   Operator = ">"
	OpLe   Operator = "<="
	OpGe   Operator = ">="
	OpLike Operator = "like"
)

// longest prefixes first, so `<=` is not read as `<`
var operatorPrefixes = []Operator{OpNe, OpLe, OpGe, OpLike, OpLt, OpGt}

// ParseOperatorValue splits an `operator|value` filter value, defaulting to
// equality when no recognized operator prefix is present.
func ParseOperatorValue(raw string) (Operator, string) {
	for _, op := range operatorPrefixes {
		prefix := string(op) + "|"
		if strings.HasPrefix(raw, prefix) {
			return op, raw[len(prefix):]
		}
	}
	return OpEq, raw
}

type OrderClause struct {
	Column     string
	Descending bool
}

// ParseOrderBy parses `field:dir|field:dir`; direction defaults to ascending,
// only an explicit `desc` flips it.
func ParseOrderBy(parametersString string) []OrderClause {
	clauses := []OrderClause{}
	for _, assignment := range ParseAssignments(parametersString) {
		clause := OrderClause{Column: assignment.Name}
		if len(assignment.Values) > 0 && strings.EqualFold(assignment.Values[0], "desc") {
			clause.Descending = true
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// SplitCommaList splits a comma list dropping empty entries.
func SplitCommaList(fields string) []string {
	result := []string{}
	for _, field := range strings.Split(fields, ",") {
		if field = strings.TrimSpace(field); field != "" {
			result = append(result, field)
		}
	}
	return result
}
