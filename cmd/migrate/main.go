package main

import (
	"fmt"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/QuangTung97/eventstore/config"
	"github.com/QuangTung97/eventstore/pkg/migration"
)

func main() {
	conf := config.Load()
	cmd := migration.MigrateCommand(conf.Postgres.DSN())
	err := cmd.Execute()
	if err != nil {
		fmt.Println("[ERROR]", err)
	}
}
