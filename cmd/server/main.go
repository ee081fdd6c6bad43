package main

import (
	"context"
	"flag"
	"log/syslog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/finalqr/qrcard/media"
	"github.com/finalqr/qrcard/persistent"
	"github.com/finalqr/qrcard/transport/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	logrusys "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/tidwall/buntdb"
	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

const maxUploadSize = 16 * 1024 * 1024

type config struct {
	Port           int    `envconfig:"PORT" default:"5000"`
	PostgresDsn    string `envconfig:"POSTGRES_DSN" required:"true"`
	FrontendOrigin string `envconfig:"FRONTEND_ORIGIN" default:"https://final-qr-update.vercel.app"`
	CloudName      string `envconfig:"CLOUDINARY_CLOUD_NAME" required:"true"`
	ApiKey         string `envconfig:"CLOUDINARY_API_KEY" required:"true"`
	ApiSecret      string `envconfig:"CLOUDINARY_API_SECRET" required:"true"`
	JournalPath    string `envconfig:"UPLOAD_JOURNAL_PATH" default:"uploads.db"`
}

func listenAndServe(
	ctx context.Context,
	cfg config,
	bdb *buntdb.DB,
	db *bun.DB,
	debug bool,
) func() error {
	cardStore := &persistent.CardStore{DB: db}
	journal := &persistent.UploadJournal{Buntdb: bdb}
	journal.CreateIndexes()
	logOrphanedUploads(journal)

	cardController := rest.CardController{
		Store:   cardStore,
		Upload:  media.RestUpload(cfg.CloudName, cfg.ApiKey, cfg.ApiSecret),
		Journal: journal,
	}

	server := fiber.New(fiber.Config{BodyLimit: maxUploadSize})
	server.Use(rest.LogHandler())

	api := fiber.New(fiber.Config{
		BodyLimit:    maxUploadSize,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})

	allowOrigins := cfg.FrontendOrigin
	if debug {
		allowOrigins += ", http://localhost:3000"
	}
	api.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH",
		AllowHeaders:     "Content-Type, Authorization",
		AllowCredentials: true,
	}))

	api.Get("/status", monitor.New())
	cardController.InstallTo(api)

	server.Mount("/api/", api)

	server.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.SendString("Welcome to the QR Code API!")
	})

	server.Use(rest.NotFoundHandler)

	var addr string
	if debug {
		addr = "127.0.0.1:" + strconv.Itoa(cfg.Port)
	} else {
		addr = ":" + strconv.Itoa(cfg.Port)
	}
	go server.Listen(addr)

	return func() error {
		return server.Shutdown()
	}
}

func logOrphanedUploads(journal *persistent.UploadJournal) {
	orphans, err := journal.Orphans()
	if err != nil {
		logrus.WithError(err).Warningln("Could not list orphaned uploads.")
		return
	}
	if len(orphans) > 0 {
		logrus.WithField("count", len(orphans)).
			Warningln("Journal contains uploads without an owning card.")
	}
}

func setupLogger(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	syslogHook, err := logrusys.NewSyslogHook("", "", syslog.LOG_USER, "qrcard_backend")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not create syslog hook.")
		return
	}
	logrus.AddHook(syslogHook)
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func main() {
	flag.Parse()
	debug := os.Getenv("DEBUG") == "true"
	setupLogger(debug)
	logrus.Infoln("Starting backend.")

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debugln("No .env file loaded.")
	}
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.WithError(err).Fatalln("Invalid environment configuration.")
	}

	bdb, err := buntdb.Open(cfg.JournalPath)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open upload journal.")
	}
	defer bdb.Close()

	logrus.Infoln("Opening database.")
	pg := persistent.PgOpen(context.Background(), cfg.PostgresDsn)
	if debug {
		pg.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	defer pg.DB.Close()
	defer pg.Close()

	logrus.Infoln("Starting listening... To shut down use ^C")
	shutdown := listenAndServe(context.Background(), cfg, bdb, pg, debug)

	awaitInterruption()

	logrus.Infoln("Shutting down...")
	err = shutdown()
	if err != nil {
		logrus.WithError(err).Warningln("Fiber shutdown failed.")
	}
	logrus.Exit(0)
}
