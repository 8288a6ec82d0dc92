package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"silant-backend/config"
	"silant-backend/internal/db"
	"silant-backend/internal/logger"
	"silant-backend/internal/model"
	"silant-backend/internal/service"
	"silant-backend/internal/store"
)

type env struct {
	configPath string
	logLevel   string
	out        io.Writer
}

type command func(e *env, args []string) error

var commands = map[string]command{
	"migrate":        runMigrate,
	"seed":           runSeed,
	"create-user":    runCreateUser,
	"delete-user":    runDeleteUser,
	"delete-catalog": runDeleteCatalog,
}

var commandNames = []string{"migrate", "seed", "create-user", "delete-user", "delete-catalog"}

// open loads the configuration and connects with the schema migrated.
func (e *env) open() (*service.Service, *gorm.DB, error) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration from %s: %w", e.configPath, err)
	}
	if err := logger.Init(cfg.Log.Level, "console"); err != nil {
		return nil, nil, err
	}
	if e.logLevel != "" {
		if err := logger.SetLevel(e.logLevel); err != nil {
			return nil, nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	logger.L().Debug("configuration loaded", zap.String("path", e.configPath), zap.Stringer("log_level", logger.Level()))
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return service.New(store.NewGormStore(gormDB), nil, service.Options{Location: cfg.Server.Location}), gormDB, nil
}

func closeDB(gormDB *gorm.DB) {
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}
}

func parseFlags(fs *pflag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	var missing []error
	for _, name := range required {
		if v, _ := fs.GetString(name); v == "" {
			missing = append(missing, fmt.Errorf("--%s is required", name))
		}
	}
	return errors.Join(missing...)
}

func runMigrate(e *env, args []string) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	_, gormDB, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(gormDB)
	fmt.Fprintln(e.out, "schema is up to date")
	return nil
}

func runSeed(e *env, args []string) error {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	file := fs.StringP("file", "f", "", "fixtures YAML file")
	if err := parseFlags(fs, args, "file"); err != nil {
		return err
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var fixtures service.Fixtures
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}

	svc, gormDB, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	res, err := svc.Seed(context.Background(), fixtures)
	if err != nil {
		return err
	}
	logger.L().Info("fixtures seeded",
		zap.String("file", *file),
		zap.Int("catalog_entries", res.CatalogEntries),
		zap.Int("users", res.Users),
	)
	fmt.Fprintf(e.out, "seeded %d catalog entries and %d users\n", res.CatalogEntries, res.Users)
	return nil
}

func runCreateUser(e *env, args []string) error {
	fs := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	var nu service.NewUser
	var role string
	fs.StringVar(&nu.Username, "username", "", "login name")
	fs.StringVar(&nu.Password, "password", "", "initial password")
	fs.StringVar(&nu.FirstName, "first-name", "", "display name")
	fs.StringVar(&role, "role", "", "CLIENT, SERVICE or MANAGER")
	if err := parseFlags(fs, args, "username", "password", "role"); err != nil {
		return err
	}
	nu.Role = model.Role(role)

	svc, gormDB, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	u, err := svc.CreateUser(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
	return nil
}

func runDeleteUser(e *env, args []string) error {
	fs := pflag.NewFlagSet("delete-user", pflag.ContinueOnError)
	username := fs.String("username", "", "login name")
	if err := parseFlags(fs, args, "username"); err != nil {
		return err
	}

	svc, gormDB, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	if err := svc.DeleteUser(context.Background(), *username); err != nil {
		return deleteErr("user "+*username, err)
	}
	fmt.Fprintf(e.out, "deleted user %s\n", *username)
	return nil
}

func runDeleteCatalog(e *env, args []string) error {
	fs := pflag.NewFlagSet("delete-catalog", pflag.ContinueOnError)
	kind := fs.String("kind", "", "catalog kind, e.g. engine_model")
	name := fs.String("name", "", "entry name")
	if err := parseFlags(fs, args, "kind", "name"); err != nil {
		return err
	}

	svc, gormDB, err := e.open()
	if err != nil {
		return err
	}
	defer closeDB(gormDB)

	if err := svc.DeleteCatalogEntry(context.Background(), model.CatalogKind(*kind), *name); err != nil {
		return deleteErr(fmt.Sprintf("%s %q", *kind, *name), err)
	}
	fmt.Fprintf(e.out, "deleted %s %q\n", *kind, *name)
	return nil
}

func deleteErr(what string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s does not exist", what)
	case errors.Is(err, store.ErrReferenced):
		return fmt.Errorf("%s is still referenced and cannot be deleted", what)
	}
	return err
}
