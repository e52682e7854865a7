package main

import (
	"context"
	"net/http"

	"marketflow/account"
	"marketflow/ads"
	"marketflow/bizerror"
	"marketflow/domain/adflow"
	"marketflow/domain/contenttype"
	"marketflow/domain/creator"
	"marketflow/domain/orgarea"
	"marketflow/domain/request"
	"marketflow/es"
	"marketflow/event"
	"marketflow/filestore"
	"marketflow/misc"
	"marketflow/persistence"
	"marketflow/session"
	"marketflow/sessions"
	"marketflow/tracing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{},
		&orgarea.Area{}, &orgarea.AreaMember{},
		&contenttype.ContentType{}, &contenttype.WorkflowStep{}, &contenttype.ContentTypeField{},
		&request.Request{}, &request.RequestFieldValue{}, &request.FieldValueVersion{},
		&creator.Creator{},
		&adflow.AdType{}, &adflow.AdOrigin{}, &adflow.AdProject{}, &adflow.AdVideo{},
		&adflow.AdDeliverable{}, &adflow.AdVideoComment{}, &adflow.AdCounter{},
		&event.EventRecord{},
	).Error
	if err != nil {
		logrus.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		logrus.Fatalf("security configuration failed %v\n", err)
	}
	if err := adflow.SeedDefaults(); err != nil {
		logrus.Fatalf("seeding defaults failed %v\n", err)
	}

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		logrus.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	filestore.Bootstrap()
	es.CreateClientFromEnv()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, misc.GetServiceName())
	})

	sessions.RegisterSessionsRestAPI(engine)

	authFilter := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, authFilter)
	orgarea.RegisterAreasRestAPI(engine, authFilter)
	contenttype.RegisterContentTypesRestAPI(engine, authFilter)
	request.RegisterRequestsRestAPI(engine, authFilter)
	creator.RegisterCreatorsRestAPI(engine, authFilter)
	adflow.RegisterAdFlowRestAPI(engine, authFilter)
	ads.RegisterAdsRestAPI(engine, authFilter)

	err = engine.Run(":80")
	if err != nil {
		panic(err)
	}
}
