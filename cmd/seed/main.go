package main

import (
	"context"
	"flag"
	"log"

	"github.com/notifix/notifix/internal/auth"
	"github.com/notifix/notifix/internal/config"
	"github.com/notifix/notifix/internal/db"
	"github.com/notifix/notifix/internal/logging"
	"github.com/notifix/notifix/internal/notifications"
	"github.com/notifix/notifix/internal/seeds"
	"go.uber.org/zap"
)

func main() {
	var (
		file    = flag.String("file", "", "path to a seed YAML file")
		migrate = flag.Bool("migrate", false, "create the schema and tables before seeding")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	l, err := logging.New(cfg.Production)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	d, err := db.Open(cfg, l)
	if err != nil {
		l.Fatal("error initializing database", zap.Error(err))
	}

	if *migrate {
		if err := db.Migrate(d, cfg.Schema, &auth.User{}, &notifications.Notification{}); err != nil {
			l.Fatal("migration failed", zap.Error(err))
		}
		l.Info("tables ready", zap.String("schema", cfg.Schema))
	}

	if *file == "" {
		if !*migrate {
			flag.Usage()
		}
		return
	}

	f, err := seeds.Load(*file)
	if err != nil {
		l.Fatal("seeding failed", zap.Error(err))
	}

	res, err := seeds.Apply(context.Background(), auth.NewGormStore(d), notifications.NewGormStore(d), f)
	if err != nil {
		l.Fatal("seeding failed", zap.Error(err))
	}

	l.Info("seeding done",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("users_skipped", res.UsersSkipped),
		zap.Int("notifications_created", res.NotificationsCreated),
	)
}
