package i18n

import (
	"github.com/fundwit/go-commons/types"
)

type Language struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Name string   `json:"name" gorm:"unique_index:uni_language_name" binding:"required"`
}

func (l *Language) TableName() string {
	return "languages"
}
