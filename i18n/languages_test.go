package i18n

import (
	"crudcore/persistence"
	"crudcore/testinfra"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSetLanguageFilter(t *testing.T) {
	RegisterTestingT(t)
	defer func() { LoadLanguagesFunc = loadLanguages }()

	LoadLanguagesFunc = func() ([]Language, error) {
		return []Language{{ID: 1, Name: "en"}, {ID: 2, Name: "fr"}}, nil
	}
	FlushLanguageCache()

	router := gin.Default()
	router.Use(SetLanguageFilter())
	var resolved types.ID
	router.GET("/probe", func(c *gin.Context) {
		resolved = LanguageID(c)
		c.Status(http.StatusOK)
	})

	t.Run("should resolve the Language header against the seeded languages", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderLanguage, "fr")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(resolved).To(Equal(types.ID(2)))
	})

	t.Run("should fall back to the first language for missing or unknown headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(resolved).To(Equal(types.ID(1)))

		req = httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderLanguage, "martian")
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(resolved).To(Equal(types.ID(1)))
	})

	t.Run("should resolve nothing when no language is seeded", func(t *testing.T) {
		LoadLanguagesFunc = func() ([]Language, error) {
			return []Language{}, nil
		}
		FlushLanguageCache()
		defer FlushLanguageCache()

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(resolved).To(Equal(types.ID(0)))
	})
}

func TestLanguageID(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be zero when the filter did not run", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		Expect(LanguageID(c)).To(Equal(types.ID(0)))
	})
}

func TestDefaultLanguageConfiguration(t *testing.T) {
	RegisterTestingT(t)
	testDatabase := testinfra.StartMysqlTestDatabase("crudcore")
	defer testinfra.StopMysqlTestDatabase(testDatabase)
	persistence.ActiveDataSourceManager = testDatabase.DS
	db := testDatabase.DS.GormDB(nil)
	Expect(db.AutoMigrate(&Language{}).Error).To(BeNil())

	t.Run("should seed the default language exactly once", func(t *testing.T) {
		Expect(DefaultLanguageConfiguration()).To(BeNil())
		Expect(DefaultLanguageConfiguration()).To(BeNil())

		languages := []Language{}
		Expect(db.Find(&languages).Error).To(BeNil())
		Expect(len(languages)).To(Equal(1))
		Expect(languages[0].Name).To(Equal(DefaultLanguageName))
		Expect(languages[0].ID.IsZero()).To(BeFalse())
	})
}
