package main

import (
	"crudcore/account"
	"crudcore/authority"
	"crudcore/bizerror"
	"crudcore/common"
	"crudcore/crud"
	"crudcore/domain"
	"crudcore/i18n"
	"crudcore/infra/tracing"
	"crudcore/persistence"
	"crudcore/session"
	"crudcore/sessions"
	"net/http"

	"github.com/gin-gonic/gin"
)

func main() {
	common.Log.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		common.Log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			common.Log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		common.Log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&i18n.Language{},
		&authority.Action{}, &authority.Role{}, &authority.Property{},
		&authority.RoleActionBinding{}, &authority.UserRoleBinding{},
		&domain.Post{}, &domain.PostTranslation{},
	).Error
	if err != nil {
		common.Log.Fatalf("database migration failed %v\n", err)
	}

	if err := i18n.DefaultLanguageConfiguration(); err != nil {
		common.Log.Fatalf("default language configuration failed %v\n", err)
	}
	if err := authority.DefaultAuthorityConfiguration(domain.PostDescriptor().TableName); err != nil {
		common.Log.Fatalf("default authority configuration failed %v\n", err)
	}

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling(), i18n.SetLanguageFilter())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "crudcore") })

	sessions.RegisterSessionsHandler(engine)
	account.RegisterUsersHandler(engine)

	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())
	authority.RegisterAuthorityHandler(engine, session.SimpleAuthFilter())
	crud.RegisterCrudAPI(engine, domain.PostDescriptor(), session.SimpleAuthFilter())

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
