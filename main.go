package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/semaphore"

	"github.com/huyinayena-commits/EasyScanlate/pkg/batch"
	"github.com/huyinayena-commits/EasyScanlate/pkg/config"
	"github.com/huyinayena-commits/EasyScanlate/pkg/engine"
	"github.com/huyinayena-commits/EasyScanlate/pkg/logger"
)

var (
	appCfg    *config.Config
	jwtSecret []byte

	// chapterRunner processes uploaded archives. runGate keeps it to one
	// chapter at a time for the whole process.
	chapterRunner batch.Runner
	runGate       = semaphore.NewWeighted(1)

	htmlCache     = cache.New(30*time.Minute, 1*time.Hour)
	loginLimiters = cache.New(10*time.Minute, 20*time.Minute)
)

func main() {
	// ./.env fills variables that are not already set
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: reading .env: %v", err)
	}
	cfgPath := os.Getenv("SCANLATE_CONFIG")
	if cfgPath == "" {
		cfgPath = "scanlate.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appCfg = cfg
	jwtSecret = []byte(cfg.Server.JWTSecret)
	if cfg.UsingDevSecret() {
		log.Println("warning: JWT_SECRET not set, using the development secret")
	}

	// `./scanlate-server migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	initDB()
	chapterRunner = engine.NewPipeline(cfg, logger.New(cfg.Logging.Level))

	r := gin.Default()
	setupRoutes(r)

	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
