package account

import (
	"context"
	"crypto/sha256"
	"crudcore/authority"
	"crudcore/bizerror"
	"crudcore/idgen"
	"crudcore/persistence"
	"encoding/hex"

	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RegisterUserFunc          = RegisterUser
	FindUserByCredentialsFunc = FindUserByCredentials
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// RegisterUser creates the user and binds every role flagged as registration role.
func RegisterUser(c *UserCreation) (*UserInfo, error) {
	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Secret: HashSha256(c.Secret)}

	err := persistence.ActiveDataSourceManager.GormDB(nil).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var registrationRoles []authority.Role
		if err := tx.Model(&authority.Role{}).Where("is_registration_role = ?", true).Find(&registrationRoles).Error; err != nil {
			return err
		}
		for _, role := range registrationRoles {
			binding := authority.UserRoleBinding{ID: idgen.NextID(userIdWorker), UserID: user.ID, RoleID: role.ID}
			if err := tx.Create(&binding).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &registrationError{cause: err}
	}
	return &UserInfo{ID: user.ID, Name: user.Name}, nil
}

func FindUserByCredentials(ctx context.Context, name, secret string) (*UserInfo, error) {
	identity := UserInfo{}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := db.Model(&User{}).Where(&User{Name: name, Secret: HashSha256(secret)}).First(&identity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrInvalidSecret
		}
		return nil, err
	}
	return &identity, nil
}

func QueryUsers() (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

type registrationError struct {
	cause error
}

func (e *registrationError) Error() string {
	return "registration failed: " + e.cause.Error()
}

func (e *registrationError) Unwrap() error {
	return bizerror.ErrConflict
}
