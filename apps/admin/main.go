package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/ingest"
	"github.com/konatebeh20/EduTrack/core/report"
	emailsvc "github.com/konatebeh20/EduTrack/services/email"
	logsvc "github.com/konatebeh20/EduTrack/services/logger"
	rendersvc "github.com/konatebeh20/EduTrack/services/render"
	"github.com/konatebeh20/EduTrack/storage/database"
)

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, database.Ping(db))
	errAndDie(logger, database.Migrate(db))

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	validate := validator.New()
	core.InitValidators(validate, newTranslator())

	repo := database.NewStudentRepository(db)

	// start CLI
	cli := commandLine{
		ingestSvc: ingest.NewService(repo, validate, conf, logger),
		reportSvc: report.NewService(repo, rendersvc.NewService(), mailSvc, logger, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
