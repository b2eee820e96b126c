package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name" gorm:"unique_index:uni_user_name"`
	Secret string   `json:"-"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

type UserCreation struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required,gte=6"`
}
