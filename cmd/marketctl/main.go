// Command marketctl tareas de operación: migraciones, importación de productos y alta del primer admin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/Supermercado-api/internal/application/auth"
	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/application/usecase"
	"github.com/jhoicas/Supermercado-api/internal/domain"
	"github.com/jhoicas/Supermercado-api/internal/domain/entity"
	"github.com/jhoicas/Supermercado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Supermercado-api/pkg/config"
	"github.com/jhoicas/Supermercado-api/pkg/logger"
)

// systemSession sesión con la que el CLI invoca los casos de uso.
var systemSession = domain.Session{UserID: "marketctl", Role: entity.RoleAdmin}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	app := &cli.App{
		Name:  "marketctl",
		Usage: "administración de supermercado-api",
		Commands: []*cli.Command{
			migrateCommand(cfg),
			importProductsCommand(cfg, log),
			createAdminCommand(cfg, log),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("marketctl")
		os.Exit(1)
	}
}

func migrateCommand(cfg *config.Config) *cli.Command {
	withMigrator := func(fn func(*postgres.Migrator) error) error {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString())
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(m)
	}
	return &cli.Command{
		Name:  "migrate",
		Usage: "migraciones de esquema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "aplica todas las migraciones pendientes",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "revierte migraciones",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "número de migraciones a revertir"},
				},
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator) error { return m.Down(c.Int("steps")) })
				},
			},
			{
				Name:  "version",
				Usage: "muestra la versión actual del esquema",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *postgres.Migrator) error {
						v, dirty, err := m.Version()
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "versión %d (dirty=%t)\n", v, dirty)
						return nil
					})
				},
			},
		},
	}
}

func importProductsCommand(cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "import-products",
		Usage: "importa productos desde un CSV (el stock inicial queda como stock_in)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "ruta del CSV"},
			&cli.StringFlag{Name: "charset", Value: "utf-8", Usage: "utf-8 | latin1 | windows-1252"},
			&cli.StringFlag{Name: "delimiter", Value: ",", Usage: "separador de columnas"},
		},
		Action: func(c *cli.Context) error {
			delim, size := utf8.DecodeRuneInString(c.String("delimiter"))
			if size == 0 {
				return errors.New("delimiter vacío")
			}
			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			reqs, rowErrs, err := parseProducts(f, c.String("charset"), delim)
			if err != nil {
				return err
			}
			for _, e := range rowErrs {
				log.Warn().Err(e).Msg("fila descartada")
			}

			ctx := c.Context
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			uc := usecase.NewProductUseCase(
				postgres.NewTxRunner(pool),
				postgres.NewProductRepository(pool),
				postgres.NewOrderRepository(pool),
				postgres.NewCategoryRepository(pool),
				postgres.NewSupplierRepository(pool),
				nil,
			)
			created, skipped := importAll(ctx, uc, reqs, log)
			fmt.Fprintf(c.App.Writer, "creados %d, omitidos %d, filas inválidas %d\n", created, skipped, len(rowErrs))
			return nil
		},
	}
}

// productCreator lo implementa usecase.ProductUseCase.
type productCreator interface {
	Create(ctx context.Context, sess domain.Session, in dto.CreateProductRequest) (*dto.ProductResponse, error)
}

// importAll crea cada producto en su propia transacción; un SKU existente se omite.
func importAll(ctx context.Context, uc productCreator, reqs []dto.CreateProductRequest, log *logger.Logger) (created, skipped int) {
	for _, in := range reqs {
		_, err := uc.Create(ctx, systemSession, in)
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
			log.Info().Str("sku", in.SKU).Msg("SKU existente, omitido")
		default:
			skipped++
			log.Warn().Err(err).Str("sku", in.SKU).Msg("no se pudo crear el producto")
		}
	}
	return created, skipped
}

func createAdminCommand(cfg *config.Config, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "crea un usuario admin (primer acceso)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
			&cli.StringFlag{Name: "name", Value: "Administrador"},
		},
		Action: func(c *cli.Context) error {
			pool, err := postgres.NewPool(c.Context, cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
				Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
			})
			user, err := uc.CreateUser(c.Context, dto.RegisterRequest{
				Email:    c.String("email"),
				Password: c.String("password"),
				Name:     c.String("name"),
				Role:     entity.RoleAdmin,
			})
			if err != nil {
				return err
			}
			log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin creado")
			return nil
		},
	}
}
