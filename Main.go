package main

import (
	"os"

	"milkmart/config"
	"milkmart/routers"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file, using environment as-is")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	db, err := config.SetupMySQLConnection()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection()
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	router := routers.SetupRouters(db, rdb)
	logrus.WithField("port", port).Info("server starting")
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
