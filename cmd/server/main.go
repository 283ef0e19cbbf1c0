package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/notify"
	"github.com/roastkoff/controlposter/internal/pairing"
	"github.com/roastkoff/controlposter/internal/playback"
	"github.com/roastkoff/controlposter/internal/redis"
)

func main() {
	env := LoadEnvironment()

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(db.DB)

	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	feed := redis.NewDisplayFeed(redis.Rdb)

	var notifier *notify.Notifier
	if env.MQTTBroker != "" {
		var err error
		notifier, err = notify.NewNotifier(env.MQTTBroker, "controlposter-server")
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect")
		}
		defer notifier.Close()
	}

	media := InitStorage(env)

	pairSvc := pairing.NewService(store, feed)
	activator := playback.NewActivator(store, feed, notifier)
	dir := directory.New(store, feed)

	r := gin.Default()
	RegisterRoutes(r, env, store, media, pairSvc, activator, dir, feed)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
