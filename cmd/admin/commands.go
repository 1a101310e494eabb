package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/seed"
	"github.com/masterinnovation12/idmji-gestor-sub000/migrations"
	"github.com/spf13/cobra"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if down {
				name, err := migrations.Down(cmd.Context(), e.db)
				if err != nil {
					return err
				}
				fmt.Printf("%s deshecha %s\n", warnMark, name)
				return nil
			}

			applied, err := migrations.Up(cmd.Context(), e.db)
			for _, name := range applied {
				fmt.Printf("%s %s\n", okMark, name)
			}
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Printf("%s esquema al día\n", okMark)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "deshace la última migración aplicada")

	return cmd
}

func generateCmd() *cobra.Command {
	now := time.Now()
	var year, month int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Genera los cultos de un mes a partir de las plantillas semanales",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.generator(cmd.Context()).Generate(cmd.Context(), month, year)
			if res != nil {
				fmt.Printf("%04d-%02d: %s creados, %d ya existían\n",
					res.Year, res.Month, color.New(color.FgGreen).Sprint(res.Created), res.Skipped)
				for _, svc := range res.Services {
					marker := ""
					if svc.IsHolidayAdjusted {
						marker = " " + color.New(color.FgYellow).Sprint("[festivo]")
					}
					fmt.Printf("  %s %s tipo %d%s\n", svc.Date.Format("2006-01-02"), svc.StartTime, svc.ServiceTypeID, marker)
				}
			}
			if err != nil {
				if res != nil {
					fmt.Printf("%s generación interrumpida; lo anterior se ha guardado\n", warnMark)
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", now.Year(), "año")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "mes (1-12)")

	return cmd
}

func seedTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-templates",
		Short: "Crea los tipos de culto y la plantilla semanal por defecto",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := seed.SeedCatalog(cmd.Context(), e.repo, seed.DefaultCatalog)
			if err != nil {
				return err
			}
			fmt.Printf("%s %d tipos de culto y %d plantillas nuevos\n", okMark, res.ServiceTypes, res.Templates)
			return nil
		},
	}
}

func importHolidaysCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-holidays",
		Short: "Importa festivos desde un CSV (date,kind[,description])",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("falta --file")
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			holidays, err := seed.ReadHolidaysCSV(f)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := seed.ImportHolidays(cmd.Context(), e.repo, e.generator(cmd.Context()), holidays)
			if res != nil {
				fmt.Printf("%s %d festivos importados\n", okMark, res.Holidays)
				fmt.Printf("  cultos adelantados: %d\n", res.AdjustedServices)
				fmt.Printf("  cultos restaurados: %d\n", res.RevertedServices)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "ruta del CSV")

	return cmd
}

func seedUsersCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Crea usuarios aleatorios para pruebas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return errors.New("-n debe ser mayor que 0")
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			created := seed.SeedUsers(cmd.Context(), e.repo, n, e.cfg.Seed.User.Password, e.cfg.Email.UserDomain)
			mark := okMark
			if created < n {
				mark = warnMark
			}
			fmt.Printf("%s %d de %d usuarios creados\n", mark, created, n)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "n", "n", 5, "número de usuarios")

	return cmd
}
