package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/request"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/response"
	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/services/codes"
)

func newCodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage reward code pools",
	}

	cmd.AddCommand(newCodesStatsCmd())
	cmd.AddCommand(newCodesAddCmd())

	return cmd
}

func newCodesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show total and unused codes per level",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats []codes.PoolStats

			if err := client.Get(cmd.Context(), "/api/v1/admin/codes", &stats); err != nil {
				return err
			}

			output(cmd).Print(stats)
			return nil
		},
	}
}

func newCodesAddCmd() *cobra.Command {
	var (
		level string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "add [CODE...]",
		Short: "Append codes to a level's pool",
		Long: `Append codes to a level's pool.

Codes are taken from the arguments and, with --file, one per line from the
given file ("-" reads standard input). Blank lines and lines starting with
# are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := append([]string(nil), args...)

			if file != "" {
				fromFile, err := readCodeFile(cmd, file)
				if err != nil {
					return err
				}
				list = append(list, fromFile...)
			}

			if len(list) == 0 {
				return fmt.Errorf("no codes given")
			}

			req := request.ProvisionCodesRequest{Codes: list}
			var result response.ProvisionResult

			if err := client.Post(cmd.Context(), "/api/v1/admin/codes/"+url.PathEscape(level), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "Point level the codes unlock (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read codes from a file, one per line")
	_ = cmd.MarkFlagRequired("level")

	return cmd
}

func readCodeFile(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return parseCodeLines(r)
}

func parseCodeLines(r io.Reader) ([]string, error) {
	var list []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read codes: %w", err)
	}
	return list, nil
}
