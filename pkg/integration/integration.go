package integration

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/QuangTung97/eventstore/config"
	"github.com/QuangTung97/eventstore/pkg/migration"

	// for integration test, must not be imported in any main.go
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// TestCase ...
type TestCase struct {
	DB   *sqlx.DB
	Conf config.Config
}

var initOnce sync.Once

var globalConf config.Config
var globalDB *sqlx.DB

// NewTestCase ...
func NewTestCase() *TestCase {
	initOnce.Do(func() {
		rootDir := findRootDir()

		conf := config.LoadTestConfig(rootDir)
		migration.MigrateUpForTesting(rootDir, conf.Postgres.DSN())

		db := conf.Postgres.MustConnect()

		globalConf = conf
		globalDB = db
	})

	return &TestCase{
		Conf: globalConf,
		DB:   globalDB,
	}
}

// Truncate empties the tables and everything referencing them
func (tc *TestCase) Truncate(tables ...string) {
	tc.DB.MustExec(fmt.Sprintf(
		"TRUNCATE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
}

func findRootDir() string {
	workdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	directory := workdir
	for {
		files, err := os.ReadDir(directory)
		if err != nil {
			panic(err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if file.Name() == "go.mod" {
				return directory
			}
		}

		directory = path.Dir(directory)
	}
}
