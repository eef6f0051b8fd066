package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
)

func main() {
	user.Setup(core.Conf)

	// set up logging
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewZerologLogger(core.Conf)
	} else {
		std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up the global directory DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService(logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	codec := auth.NewCodec(core.Conf.SecretKey)
	tenantRepo := database.NewTenantRepository(db)
	registry := database.NewPoolRegistry(core.Conf, tenantRepo)
	defer func() { _ = registry.Close() }()

	tenantSvc := tenant.NewService(tenantRepo, codec)
	usrSvc := user.NewService(database.NewUserRepository(db), mailSvc)
	courseSvc := course.NewService(database.NewCourseRepository())

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Addr:      core.Conf.Server.Address(),
		Logger:    logger,
		Codec:     codec,
		Registry:  registry,
		TenantSvc: tenantSvc,
		UserSvc:   usrSvc,
		CourseSvc: courseSvc,
	})

	go app.Start()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("stopping server", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
