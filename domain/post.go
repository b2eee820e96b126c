package domain

import (
	"crudcore/query"

	"github.com/fundwit/go-commons/types"
)

// Post is the example translatable entity served through the generic
// record pipeline. Its localizable attributes live in post_translations.
type Post struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId"`
	Year   int      `json:"year"`

	PublishedAt *types.Timestamp `json:"publishedAt" sql:"type:DATETIME(6)"`
	CreatedAt   types.Timestamp  `json:"createdAt" sql:"type:DATETIME(6)"`
	UpdatedAt   types.Timestamp  `json:"updatedAt" sql:"type:DATETIME(6)"`
}

func (p *Post) TableName() string {
	return "posts"
}

type PostTranslation struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	PostID     types.ID `json:"postId" gorm:"unique_index:uni_post_language"`
	LanguageID types.ID `json:"languageId" gorm:"unique_index:uni_post_language"`

	Title       string `json:"title"`
	Description string `json:"description"`

	CreatedAt types.Timestamp `json:"createdAt" sql:"type:DATETIME(6)"`
	UpdatedAt types.Timestamp `json:"updatedAt" sql:"type:DATETIME(6)"`
}

func (t *PostTranslation) TableName() string {
	return "post_translations"
}

func PostDescriptor() query.Descriptor {
	return query.Descriptor{
		TableName:    "posts",
		SingularName: "post",
		Translatable: true,
		OwnerKey:     "user_id",
		Relations: map[string]query.Relation{
			"user": {TableName: "users", ForeignKey: "user_id"},
		},
	}
}
