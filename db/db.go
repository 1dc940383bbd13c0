package db

import (
	"os"
	"path/filepath"

	"mindmeld/config"
	"mindmeld/logger"
	"mindmeld/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Connect abre conexão com DB (sqlite3 por padrão) e garante a tabela round_data.
func Connect(conf config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	if conf.Database == "postgres" || conf.Database == "postgresql" {
		log.Info("connecting to postgres", "host", conf.DbHost, "db_name", conf.DbName)
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass
		db, err = gorm.Open("postgres", path)
	} else {
		log.Info("connecting to sqlite3", "path", conf.DbPath)
		if dir := filepath.Dir(conf.DbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		db, err = gorm.Open("sqlite3", conf.DbPath)
	}

	if err != nil {
		log.Error("database connection failed", "error", err)
		return nil, err
	}

	db.LogMode(conf.DbDebug)

	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema cria/atualiza a tabela de rodadas.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(&models.RoundRecord{}).Error
}
