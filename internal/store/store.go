package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restaurant-service/internal/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Store owns the connection pool. Raw read queries go through sqlx,
// entity writes go through gorm; both share the same *sql.DB.
type Store struct {
	db  *sqlx.DB
	orm *gorm.DB
}

// NewStore creates a new database store
func NewStore(driver, databaseURL string) (*Store, error) {
	db, err := sqlx.Connect(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dialector, err := dialectorFor(driver, db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}

	orm, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Store{db: db, orm: orm}, nil
}

// New wraps an already opened gorm connection. driverName selects the
// sqlx bind style and must match the driver behind orm.
func New(orm *gorm.DB, driverName string) (*Store, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return &Store{
		db:  sqlx.NewDb(sqlDB, driverName),
		orm: orm,
	}, nil
}

func dialectorFor(driver string, conn *sql.DB) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.New(postgres.Config{Conn: conn}), nil
	case DriverMySQL:
		return mysql.New(mysql.Config{Conn: conn}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ORM returns the gorm handle used by repositories
func (s *Store) ORM() *gorm.DB {
	return s.orm
}

// Transaction runs fn inside one database transaction. Returning an error
// from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.orm.WithContext(ctx).Transaction(fn)
}

// AutoMigrate creates or updates the tables for every entity
func (s *Store) AutoMigrate(ctx context.Context) error {
	err := s.orm.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Customer{},
		&models.Address{},
		&models.Product{},
		&models.Courier{},
		&models.Order{},
		&models.OrderLine{},
		&models.Payment{},
		&models.ProcessedEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
