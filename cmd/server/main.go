package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/softyse/unilink-auth"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("unilink"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
	boot := lgr.GetLogger("boot")

	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := auth.NewTokenService(
		[]byte(cfg.GetAccessSigningKey()),
		[]byte(cfg.GetRefreshSigningKey()),
		cfg.GetAccessTokenExpiration(),
		cfg.GetRefreshTokenExpiration(),
		"unilink",
		lgr.GetLogger("tokens"),
	)

	var mailer auth.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = auth.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom).
			WithLogger(lgr.GetLogger("mailer"))
	} else {
		mailer = auth.LogMailer{Logger: lgr.GetLogger("mailer")}
	}

	service := auth.NewAuthService(repo, tokens, mailer, cfg).
		WithLogger(lgr.GetLogger("auth"))

	authCtrl := auth.NewAuthController(service, cfg).
		WithLogger(lgr.GetLogger("http"))
	usersCtrl := auth.NewUsersController(repo).
		WithLogger(lgr.GetLogger("http"))

	app := fiber.New(fiber.Config{
		AppName: "unilink-auth",
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("The API is working")
	})

	auth.RegisterRoutes(app, authCtrl, usersCtrl, func(roles ...auth.UserRole) fiber.Handler {
		return auth.Authenticate(tokens, roles...)
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			boot.Fatal("server stopped", "error", err)
		}
	}()

	boot.Info("listening", "port", cfg.Port, "env", cfg.Environment)

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		boot.Error("shutdown", "error", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func waitExitSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
