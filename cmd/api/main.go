package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/config"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/handler"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/mailqueue"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/readings"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/repository"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/scheduler"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/views"
	"github.com/masterinnovation12/idmji-gestor-sub000/migrations"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuración
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", "error", err)
		return
	}

	/**********************************************
	 * base de datos
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open no conecta; hay que hacer ping
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar a la base de datos", "error", err)
		return
	}

	applied, err := migrations.Up(ctx, dbpool)
	if err != nil {
		logger.Error("no se pudieron aplicar las migraciones", "error", err)
		return
	}
	logger.Info("esquema al día", "applied", len(applied))

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * administrador inicial
	 **********************************************/
	if err := ensureInitialAdmin(ctx, cfg, repo); err != nil {
		logger.Error("no se pudo crear el administrador inicial", "error", err)
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	/**********************************************
	 * componentes
	 **********************************************/
	mail := mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	invalidator := views.NewInvalidator(rdb, cfg.Redis.InvalidationChannel, time.Duration(cfg.Redis.OperationExpiration)*time.Minute)
	generator := scheduler.NewGenerator(repo, invalidator, cfg.HolidayOffset())
	registry := readings.NewRegistry(repo, invalidator, mail)

	h, err := handler.NewHandler(cfg, handler.Deps{
		Repository: repo,
		Mail:       mail,
		Redis:      rdb,
		Generator:  generator,
		Registry:   registry,
		Views:      invalidator,
	})
	if err != nil {
		logger.Error("no se pudo crear el handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * servidor HTTP
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      h.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("arrancando el servidor...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("no se pudo arrancar el servidor", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("apagando el servidor...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error al apagar el servidor", slog.String("error", err.Error()))
	}
	logger.Info("servidor apagado")
}

// ensureInitialAdmin crea el administrador de la configuración si todavía no existe.
func ensureInitialAdmin(ctx context.Context, cfg *config.Config, repo *repository.Repository) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	initialAdmin := &domain.User{
		Username:         cfg.InitialAdmin.Username,
		PasswordHash:     string(passwordHash),
		FullName:         cfg.InitialAdmin.FullName,
		Email:            cfg.InitialAdmin.Email,
		Role:             domain.RoleAdmin,
		IsPulpitEligible: true,
	}
	err = repo.CreateUser(ctx, initialAdmin)
	if repository.ConstraintViolated(err, "users_username_key") {
		// ya existe
		return nil
	}
	return err
}
