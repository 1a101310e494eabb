package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Tareas de administración del gestor de cultos",
		Long: `admin agrupa las tareas que no pasan por la API: aplicar migraciones,
generar los cultos de un mes, cargar el catálogo semanal, importar festivos
y crear usuarios de prueba.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(seedTemplatesCmd())
	rootCmd.AddCommand(importHolidaysCmd())
	rootCmd.AddCommand(seedUsersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
