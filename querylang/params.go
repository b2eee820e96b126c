package querylang

// Reserved parameter names. Every other key of a raw parameter mapping is
// treated as a column filter candidate.
const (
	ParamPaginate       = "paginate"
	ParamPage           = "page"
	ParamCount          = "count"
	ParamWith           = "with"
	ParamSelectedFields = "selected_fields"
	ParamOrderByField   = "order_by_field"
	ParamWhereNotNull   = "where_not_null"
	ParamWhereNull      = "where_null"
	ParamWhereBetween   = "where_between"
	ParamWhereIn        = "where_in"
	ParamWhereNotIn     = "where_not_in"
	ParamLimit          = "limit"
	ParamOffset         = "offset"
	ParamLanguage       = "language"
	ParamLanguageID     = "language_id"
)

var reservedParams = map[string]bool{
	ParamPaginate: true, ParamPage: true, ParamCount: true, ParamWith: true,
	ParamSelectedFields: true, ParamOrderByField: true,
	ParamWhereNotNull: true, ParamWhereNull: true, ParamWhereBetween: true,
	ParamWhereIn: true, ParamWhereNotIn: true,
	ParamLimit: true, ParamOffset: true,
	ParamLanguage: true, ParamLanguageID: true,
}

func IsReservedParam(name string) bool {
	return reservedParams[name]
}
