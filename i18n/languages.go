package i18n

import (
	"crudcore/idgen"
	"crudcore/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

const DefaultLanguageName = "en"
const LanguageCacheTTL = 24 * time.Hour

const KeyLanguageID = "language_id"
const HeaderLanguage = "Language"

var languageCache = cache.New(LanguageCacheTTL, 10*time.Minute)

const languagesCacheKey = "languages"

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadLanguagesFunc = loadLanguages
)

func loadLanguages() ([]Language, error) {
	languages := []Language{}
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Order("id ASC").Find(&languages).Error; err != nil {
		return nil, err
	}
	return languages, nil
}

func Languages() ([]Language, error) {
	if value, found := languageCache.Get(languagesCacheKey); found {
		if languages, ok := value.([]Language); ok {
			return languages, nil
		}
	}

	languages, err := LoadLanguagesFunc()
	if err != nil {
		return nil, err
	}
	languageCache.Set(languagesCacheKey, languages, cache.DefaultExpiration)
	return languages, nil
}

func FlushLanguageCache() {
	languageCache.Flush()
}

// SetLanguageFilter resolves the request language from the Language header,
// falling back to the first seeded language, and stores the resolved id on
// the gin context.
func SetLanguageFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		languages, err := Languages()
		if err != nil {
			panic(err)
		}
		if len(languages) == 0 {
			ctx.Next()
			return
		}

		current := languages[0]
		requested := ctx.GetHeader(HeaderLanguage)
		for _, l := range languages {
			if l.Name == requested {
				current = l
				break
			}
		}
		ctx.Set(KeyLanguageID, current.ID)
		ctx.Next()
	}
}

// LanguageID returns the language resolved for the request, zero when the
// language filter did not run.
func LanguageID(ctx *gin.Context) types.ID {
	value, found := ctx.Get(KeyLanguageID)
	if !found {
		return types.ID(0)
	}
	id, ok := value.(types.ID)
	if !ok {
		return types.ID(0)
	}
	return id
}

// DefaultLanguageConfiguration seeds the default language once.
func DefaultLanguageConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	language := Language{Name: DefaultLanguageName}
	if err := db.Where(&language).First(&language).Error; err == gorm.ErrRecordNotFound {
		language.ID = idgen.NextID(idWorker)
		return db.Create(&language).Error
	} else if err != nil {
		return err
	}
	return nil
}
