package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tbctl",
	Short: "Alat operasional backend skrining TB",
	Long: `Alat bantu untuk operator backend skrining TB.

Subcommand:
  hashpass - Membuat hash bcrypt untuk ADMIN_PASSWORD_HASH
  migrate  - Membuat tabel Users dan Skrining bila belum ada`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(hashpassCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
