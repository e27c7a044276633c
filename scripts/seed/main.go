package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sunflowerskg/internal/config"
	"github.com/sunflowerskg/internal/db"
	"github.com/sunflowerskg/internal/logging"
	"github.com/sunflowerskg/internal/storage"
	"gorm.io/gorm"
)

// 新闻表为空时写入的默认滚动条内容
var defaultNews = []db.News{
	{Content: "Montessori + Reggio Emilia Inspired Learning: a unique blend of play-based and workstation-style education.", IsActive: true, SortOrder: 1},
	{Content: "Explore Our Workstations! Art • Literacy • Science • Sensory • Math, hands-on learning at its best.", IsActive: true, SortOrder: 2},
	{Content: "✨ Registration Open for 2026–27! Give your child the best start, limited seats available. Enroll now and enjoy a special fee discount!", IsActive: true, SortOrder: 3},
}

func main() {
	demo := flag.Bool("demo", false, "also insert demo inquiries and gallery images")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		logrus.Fatalf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	// 初始化数据库
	gdb, err := db.Open(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseURL,
		Silent: true,
	})
	if err != nil {
		logger.WithError(err).Fatal("数据库初始化失败")
	}
	defer db.Close(gdb)

	username := cfg.AdminUsername
	password := cfg.AdminPassword
	if username == "" || password == "" {
		username, password = "admin", "admin123"
	}
	email := cfg.AdminEmail
	if email == "" {
		email = "admin@sunflowerskg.com"
	}

	if err := seed(gdb, username, password, email, logger); err != nil {
		logger.WithError(err).Fatal("seeding failed")
	}

	if *demo {
		files, err := storage.New(cfg.UploadDir, cfg.UploadURLPath, cfg.MaxUploadBytes)
		if err != nil {
			logger.WithError(err).Fatal("failed to prepare upload directory")
		}
		if err := seedDemo(gdb, files, logger); err != nil {
			logger.WithError(err).Fatal("demo seeding failed")
		}
	}
}

func seed(gdb *gorm.DB, username, password, email string, log logrus.FieldLogger) error {
	created, err := db.EnsureUser(gdb, username, password, email)
	if err != nil {
		return err
	}
	if created {
		log.WithField("username", username).Warn("管理员账号已创建，请在首次登录后修改密码")
	} else {
		log.WithField("username", username).Info("管理员账号已存在，无需初始化")
	}

	var count int64
	if err := gdb.Model(&db.News{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("count", count).Info("新闻已存在，跳过默认新闻")
		return nil
	}

	items := make([]db.News, len(defaultNews))
	copy(items, defaultNews)
	if err := gdb.Create(&items).Error; err != nil {
		return err
	}
	log.WithField("count", len(items)).Info("默认新闻已写入")
	return nil
}
