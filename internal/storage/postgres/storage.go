package postgres

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/model"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/storage"
)

// Storage is a PostgreSQL implementation of the storage interface built on gorm
type Storage struct {
	db *gorm.DB
}

// New opens the database, applies the pool settings and migrates the schema
func New(cfg Config, log *slog.Logger) (*Storage, error) {
	gormLogger := logger.New(
		slog.NewLogLogger(log.With(slog.String("component", "postgres")).Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened database without migrating it
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&playerRecordRow{},
		&rewardCodeRow{},
	)
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player record operations

func (s *Storage) SavePlayerRecord(ctx context.Context, gameID model.GameID, record *model.PlayerRecord) error {
	row, err := toPlayerRow(gameID, record)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *Storage) GetPlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.PlayerRecord, error) {
	var row playerRecordRow
	err := s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", string(gameID), string(playerID)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return row.toRecord(), nil
}

func (s *Storage) FindPlayerRecordsByUsername(ctx context.Context, gameID model.GameID, username string) ([]*model.PlayerRecord, error) {
	var rows []playerRecordRow
	err := s.db.WithContext(ctx).
		Where("game_id = ? AND username = ?", string(gameID), username).
		Order("player_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func (s *Storage) ListPlayerRecords(ctx context.Context, gameID model.GameID) ([]*model.PlayerRecord, error) {
	var rows []playerRecordRow
	err := s.db.WithContext(ctx).
		Where("game_id = ?", string(gameID)).
		Order("player_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func (s *Storage) DeletePlayerRecord(ctx context.Context, gameID model.GameID, playerID model.PlayerID) error {
	return s.db.WithContext(ctx).
		Where("game_id = ? AND player_id = ?", string(gameID), string(playerID)).
		Delete(&playerRecordRow{}).Error
}

// Code pool operations

func (s *Storage) GetCodePool(ctx context.Context, gameID model.GameID, level string) ([]model.RewardCode, error) {
	var rows []rewardCodeRow
	err := s.db.WithContext(ctx).
		Where("game_id = ? AND level = ?", string(gameID), level).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toRewardCodes(rows), nil
}

func (s *Storage) AddCodes(ctx context.Context, gameID model.GameID, level string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&rewardCodeRow{}).
			Where("game_id = ? AND level = ?", string(gameID), level).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return err
		}

		rows := make([]rewardCodeRow, len(codes))
		for i, code := range codes {
			rows[i] = rewardCodeRow{
				GameID:   string(gameID),
				Level:    level,
				Position: next + i,
				Code:     code,
			}
		}
		return tx.Create(&rows).Error
	})
}

func (s *Storage) ClaimCode(ctx context.Context, gameID model.GameID, level string, index int) (bool, error) {
	if index < 0 {
		return false, model.ErrCodeIndexOutOfRange
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&rewardCodeRow{}).
		Where("game_id = ? AND level = ? AND position = ? AND used = ?", string(gameID), level, index, false).
		Update("used", true)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// Nothing updated: either already used or no such entry
	var count int64
	err := db.Model(&rewardCodeRow{}).
		Where("game_id = ? AND level = ? AND position = ?", string(gameID), level, index).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, model.ErrCodeIndexOutOfRange
	}
	return false, nil
}
