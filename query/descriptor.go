package query

// Relation declares an eager-loadable association of an entity. Only
// relations named here are honored by the `with` parameter.
type Relation struct {
	// table holding the related rows
	TableName string
	// foreign key column on the entity table referencing the related row
	ForeignKey string
}

// Descriptor describes one entity table to the compiler and the mutation
// pipeline, decoupled from any concrete record type.
type Descriptor struct {
	TableName    string
	SingularName string

	// whether a paired <singular>_translations table exists
	Translatable bool

	// column holding the owning principal id, user_id when empty
	OwnerKey string

	Relations map[string]Relation
}

const DefaultOwnerKey = "user_id"

func (d Descriptor) TranslationTableName() string {
	return d.SingularName + "_translations"
}

func (d Descriptor) TranslationForeignKey() string {
	return d.SingularName + "_id"
}

func (d Descriptor) OwnerColumn() string {
	if d.OwnerKey == "" {
		return DefaultOwnerKey
	}
	return d.OwnerKey
}

// ProtectedTranslationKeys are translation row columns that never override
// the primary row when attributes are merged.
func (d Descriptor) ProtectedTranslationKeys() []string {
	return []string{"id", "language_id", "created_at", "updated_at", d.TranslationForeignKey()}
}
