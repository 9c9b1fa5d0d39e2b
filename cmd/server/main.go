package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Luismorlan/blogmux/app_setting"
	"github.com/Luismorlan/blogmux/blog"
	"github.com/Luismorlan/blogmux/file_store"
	"github.com/Luismorlan/blogmux/mail"
	"github.com/Luismorlan/blogmux/server"
	"github.com/Luismorlan/blogmux/server/middlewares"
	"github.com/Luismorlan/blogmux/session"
	"github.com/Luismorlan/blogmux/store"
	. "github.com/Luismorlan/blogmux/utils"
	"github.com/Luismorlan/blogmux/utils/dotenv"
	. "github.com/Luismorlan/blogmux/utils/flag"
	. "github.com/Luismorlan/blogmux/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	CloseMetrics()
	Log.Info("api server shutdown")
}

func newStore() (store.Store, error) {
	if *StoreKind == StoreMemory {
		return store.NewMemoryStore(), nil
	}
	db, err := GetDBConnection()
	if err != nil {
		return nil, err
	}
	if err := DatabaseSetupAndMigration(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

func newRegistry(ctx context.Context) (session.Registry, error) {
	if *SessionStore == SessionMemory {
		return session.NewMemoryRegistry(), nil
	}
	return session.GetRedisRegistry(ctx)
}

func newMailer() (mail.Mailer, error) {
	switch *MailerKind {
	case MailerSes:
		return mail.NewSesMailer()
	case MailerSlack:
		return mail.NewSlackMailer(os.Getenv("SLACK_WEBHOOK_URL")), nil
	}
	return mail.NewLogMailer(), nil
}

func main() {
	ParseFlags()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	InitLogger()
	StartTracer()
	StartProfiler()
	InitMetrics()
	defer cleanup()

	setting, err := app_setting.ParseBlogAppSetting(*SettingsPath)
	if err != nil {
		Log.Fatal("fail to load blog settings: ", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		Log.Fatal("SESSION_SECRET must be set")
	}

	s, err := newStore()
	if err != nil {
		Log.Fatal("fail to set up store: ", err)
	}
	registry, err := newRegistry(context.Background())
	if err != nil {
		Log.Fatal("fail to connect session registry: ", err)
	}
	mailer, err := newMailer()
	if err != nil {
		Log.Fatal("fail to set up mailer: ", err)
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*ServiceName))

	var images file_store.ImageStore
	if *ImageStore == ImageS3 {
		if images, err = file_store.NewS3ImageStore(setting.PROFILE_IMAGE_DIR); err != nil {
			Log.Fatal("fail to set up s3 image store: ", err)
		}
	} else {
		local, err := file_store.NewLocalImageStore(setting.PROFILE_IMAGE_DIR, setting.PROFILE_IMAGE_URL_PREFIX)
		if err != nil {
			Log.Fatal("fail to set up local image store: ", err)
		}
		router.Static(setting.PROFILE_IMAGE_URL_PREFIX, local.Folder())
		images = local
	}

	svc := blog.NewService(s, images, mailer, setting)
	manager := session.NewManager(secret, setting.SessionTTL(), registry, s)

	router.Use(middlewares.Session(manager))
	server.AddBlogRoutes(router, server.NewHandler(svc, manager, IsProdEnv()))

	Log.WithField("store", *StoreKind).WithField("image_store", *ImageStore).Info("api server starts up")
	if err := router.Run(fmt.Sprintf(":%d", *Port)); err != nil {
		Log.Fatal(err)
	}
}
