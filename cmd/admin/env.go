package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/config"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/scheduler"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/views"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// env reúne las conexiones que comparten los subcomandos.
type env struct {
	cfg  *config.Config
	db   *sql.DB
	repo *repository.Repository
	rdb  *redis.Client
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuración: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("pool de conexiones: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("base de datos: %w", err)
	}

	return &env{
		cfg:  cfg,
		db:   db,
		repo: repository.NewRepository(cfg, db),
	}, nil
}

// generator devuelve un generador que avisa a la API por redis. Si redis no responde se sigue sin
// invalidar vistas.
func (e *env) generator(ctx context.Context) *scheduler.Generator {
	e.rdb = redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", e.cfg.Redis.Host, e.cfg.Redis.Port),
		Password:    e.cfg.Redis.Password,
		DialTimeout: time.Duration(e.cfg.Redis.ConnectTimeout) * time.Second,
	})

	if err := e.rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis no disponible; las vistas no se invalidarán", "error", err)
		return scheduler.NewGenerator(e.repo, nil, e.cfg.HolidayOffset())
	}

	inv := views.NewInvalidator(e.rdb, e.cfg.Redis.InvalidationChannel, time.Duration(e.cfg.Redis.OperationExpiration)*time.Minute)
	return scheduler.NewGenerator(e.repo, inv, e.cfg.HolidayOffset())
}

func (e *env) Close() {
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	_ = e.db.Close()
}
