// persistence/gorm_postgresql.go
package persistence

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/minesduel/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn(host, port, user, password, dbname)), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatch{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatch 保存对战记录
func (p *GormPostgreSQL) SaveMatch(record models.MatchRecord) error {
	match := models.NewGormMatch(record)
	return p.db.Create(&match).Error
}

// RecentMatches 按结束时间倒序返回最近的对战
func (p *GormPostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	var matches []models.GormMatch
	if err := p.db.Order("ended_at DESC").Limit(limit).Find(&matches).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, m.Record())
	}
	return records, nil
}

// MatchStats 汇总全部对战
func (p *GormPostgreSQL) MatchStats() (models.MatchStats, error) {
	var stats models.MatchStats
	err := p.db.Raw(statsQuery + " WHERE deleted_at IS NULL").Scan(&stats).Error
	return stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
