package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/edufacil/efs/api/echo"
	"github.com/edufacil/efs/core"
	"github.com/edufacil/efs/core/course"
	"github.com/edufacil/efs/core/group"
	"github.com/edufacil/efs/core/material"
	"github.com/edufacil/efs/core/questionnaire"
	"github.com/edufacil/efs/core/timetable"
	"github.com/edufacil/efs/core/user"
	consolemail "github.com/edufacil/efs/services/email/console"
	sendgridmail "github.com/edufacil/efs/services/email/sendgrid"
	"github.com/edufacil/efs/services/filestore"
	logsvc "github.com/edufacil/efs/services/logger"
	"github.com/edufacil/efs/storage/database"
	sqlxrepos "github.com/edufacil/efs/storage/database/sqlx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = consolemail.NewService(core.Conf.AppName, core.Conf.DefaultFromEmail.Address)
	} else {
		mailSvc = sendgridmail.NewService(
			core.Conf.SendgridApiKey, core.Conf.AppName, core.Conf.DefaultFromEmail.Address, logger)
	}

	var files core.FileStore
	if core.Conf.Debug {
		files = filestore.NewInMemStore()
	} else {
		if files, err = filestore.NewOSSStore(core.Conf); err != nil {
			logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
		}
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc, files)
	crsSvc := course.NewService(crsRepo)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	app := echoapi.NewServer(&echoapi.Options{
		Address:          core.Conf.Server.Address(),
		Logger:           logger,
		UserSvc:          usrSvc,
		CourseSvc:        crsSvc,
		TimetableSvc:     timetable.NewService(crsSvc, sqlxrepos.NewTimetableRepository(db)),
		GroupSvc:         group.NewService(sqlxrepos.NewGroupRepository(db), mailSvc),
		QuestionnaireSvc: questionnaire.NewService(database.NewTxDB(db), sqlxrepos.NewQuestionnaireRepository(db), usrRepo),
		MaterialSvc:      material.NewService(sqlxrepos.NewMaterialRepository(db), files),
	})

	go app.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-app.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-app.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = app.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = app.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
