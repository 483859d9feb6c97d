package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// KVStore represents the database schema
type KVStore struct {
	Key   string `gorm:"primaryKey;uniqueIndex"`
	Value any    `gorm:"type:text;serializer:json"`
}

// CallLog is one finished call.
type CallLog struct {
	ID        uint `gorm:"primaryKey"`
	Path      string
	Number    string
	Name      string
	Incoming  bool
	Reason    string
	StartedAt time.Time
	EndedAt   time.Time `gorm:"index"`
}

// MessageLog is one SMS that went through the plugin.
type MessageLog struct {
	ID         uint `gorm:"primaryKey"`
	Incoming   bool
	Peer       string
	Text       string
	Reference  int
	Failed     bool
	RecordedAt time.Time `gorm:"index"`
}

var ErrNotFound = errors.New("db: key not found")

type Store struct {
	DB *gorm.DB
}

// Open opens (or creates) the sqlite database at path and migrates it.
func Open(path string) (*Store, error) {
	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := database.AutoMigrate(&KVStore{}, &CallLog{}, &MessageLog{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{DB: database}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Put(key string, value any) error {
	return s.DB.Save(&KVStore{Key: key, Value: value}).Error
}

// GetString reads back a string value stored with Put.
func (s *Store) GetString(key string) (string, error) {
	var kv KVStore
	err := s.DB.Where(&KVStore{Key: key}).First(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	v, ok := kv.Value.(string)
	if !ok {
		return "", fmt.Errorf("db: %s holds %T, not a string", key, kv.Value)
	}
	return v, nil
}

func (s *Store) LogCall(c CallLog) error {
	return s.DB.Create(&c).Error
}

func (s *Store) LogMessage(m MessageLog) error {
	return s.DB.Create(&m).Error
}

// RecentCalls returns up to limit calls, newest first.
func (s *Store) RecentCalls(limit int) ([]CallLog, error) {
	var out []CallLog
	err := s.DB.Order("ended_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

// RecentMessages returns up to limit messages, newest first.
func (s *Store) RecentMessages(limit int) ([]MessageLog, error) {
	var out []MessageLog
	err := s.DB.Order("recorded_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}
