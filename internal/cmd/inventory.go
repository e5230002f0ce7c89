package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/clientstage/internal/archive"
	"github.com/felixgeelhaar/clientstage/internal/exec"
	"github.com/felixgeelhaar/clientstage/internal/log"
	"github.com/felixgeelhaar/clientstage/internal/ux"
)

func newInventoryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inventory <archive>",
		Short: "List the client folders an archive carries",
		Long: `List the directory entries exactly two levels below the archive root,
in listing order. These are the folders a run would replace.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := ux.NewFormatter(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			inv := &archive.Inventory{Runner: exec.NewLocalRunner(log.DefaultLogger())}
			folders, err := inv.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lines := make([]string, len(folders))
			for i, f := range folders {
				lines[i] = string(f)
			}
			return formatter.Format(lines)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	return cmd
}
