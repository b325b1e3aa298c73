package database

import (
	"math_edu_backend/internal/config"
	"math_edu_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 执行全部调度器表的迁移，测试中也用它初始化内存库
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Learner{},
		&model.LearningPath{},
		&model.TripleHelixState{},
		&model.Fact{},
		&model.ContentUnit{},
		&model.UnitFact{},
		&model.PathPosition{},
		&model.UnitProgress{},
		&model.FactMastery{},
	)
}
