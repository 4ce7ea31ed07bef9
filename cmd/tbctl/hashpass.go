package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var hashCost int

var hashpassCmd = &cobra.Command{
	Use:   "hashpass [password]",
	Short: "Membuat hash bcrypt untuk password admin",
	Long: `Membuat hash bcrypt untuk dipakai sebagai ADMIN_PASSWORD_HASH.

Password diambil dari argumen atau, bila tidak ada, dari baris pertama stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashpass,
}

func init() {
	hashpassCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}

func runHashpass(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("gagal membaca password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password tidak boleh kosong")
	}

	hash, err := hashPassword(password, hashCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost harus di antara %d dan %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("gagal membuat hash: %w", err)
	}
	return string(hash), nil
}
