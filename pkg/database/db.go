package data

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/database/models"
	"github.com/tauraamui/bgreplace/pkg/database/repos"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/xerror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	vendorName       = "tacusci"
	appName          = "bgreplace"
	databaseFileName = "history.db"
)

var (
	ErrCreateDBFile    = xerror.New("unable to create database file")
	ErrDBAlreadyExists = xerror.New("database file already exists")
	ErrDBNotSetup      = xerror.New("database file does not exist, run setup first")
)

var uc = os.UserCacheDir
var fs = afero.NewOsFs()

func Setup() error {
	log.Info("Creating database file...") //nolint

	if err := createFile(); err != nil {
		return err
	}

	db, err := Connect()
	if err != nil {
		return err
	}

	return db.Close()
}

func Destroy() error {
	dbFilePath, err := resolveDBPath(uc)
	if err != nil {
		return xerror.Errorf("unable to delete database file: %w", err)
	}

	if err := fs.Remove(dbFilePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return xerror.Errorf("%w: %s", ErrDBNotSetup, dbFilePath)
		}
		return err
	}
	return nil
}

func Connect() (repos.GormWrapper, error) {
	dbPath, err := resolveDBPath(uc)
	if err != nil {
		return nil, err
	}

	if _, err := fs.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil, xerror.Errorf("%w: %s", ErrDBNotSetup, dbPath)
	}

	log.Debug("Connecting to DB: %s", dbPath) //nolint
	db, err := openDBConnection(dbPath)
	if err != nil {
		return nil, xerror.Errorf("unable to open db connection: %w", err)
	}

	err = models.AutoMigrate(db)
	if err != nil {
		db.Close()
		return nil, xerror.Errorf("unable to run automigrations: %w", err)
	}

	return db, nil
}

// RecordSession stores one finished run in the history database.
func RecordSession(session *models.Session) error {
	db, err := Connect()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repos.SessionRepository{DB: db}
	if err := repo.Create(session); err != nil {
		return xerror.Errorf("unable to store session: %w", err)
	}
	return nil
}

func RecentSessions(limit int) ([]models.Session, error) {
	db, err := Connect()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	repo := repos.SessionRepository{DB: db}
	return repo.Recent(limit)
}

var openDBConnection = func(path string) (repos.GormWrapper, error) {
	logger := logger.New(nil, logger.Config{LogLevel: logger.Silent})
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return repos.Wrap(db), nil
}

func resolveDBPath(uc func() (string, error)) (string, error) {
	databasePath := os.Getenv("BGREPLACE_DB")
	if len(databasePath) > 0 {
		return databasePath, nil
	}

	databaseParentDir, err := uc()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s database file location: %w", databaseFileName, err)
	}

	return filepath.Join(
		databaseParentDir,
		vendorName,
		appName,
		databaseFileName), nil
}

func createFile() error {
	path, err := resolveDBPath(uc)
	if err != nil {
		return err
	}

	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		fs.MkdirAll(filepath.Dir(path), os.ModeDir|os.ModePerm) //nolint

		f, err := fs.Create(path)
		if err != nil {
			return xerror.Errorf("%v: %w", ErrCreateDBFile, err)
		}
		return f.Close()
	}

	return xerror.Errorf("%w: %s", ErrDBAlreadyExists, path)
}
