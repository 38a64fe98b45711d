package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yungbote/schemastore/internal/pkg/dbctx"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage templates",
}

var (
	templateName       string
	templateDesignFile string
)

var templateAddCmd = &cobra.Command{
	Use:   "add <alias>",
	Short: "Create a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var design string
		if templateDesignFile != "" {
			raw, err := os.ReadFile(templateDesignFile)
			if err != nil {
				return documentError("reading design", err)
			}
			design = string(raw)
		}
		name := templateName
		if name == "" {
			name = args[0]
		}
		var id int64
		err := application.Repos.Runner.InTx(cmd.Context(), func(dbc dbctx.Context) error {
			existing, err := application.Repos.Templates.GetByAlias(dbc, args[0])
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("template %q already exists (id %d)", args[0], existing.ID)
			}
			t, err := application.Repos.Templates.Create(dbc, args[0], name, design)
			if err != nil {
				return err
			}
			id = t.ID
			return nil
		})
		if err != nil {
			return repositoryError("creating template", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created template %s (id %d)\n", args[0], id)
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := application.Repos.Templates.List(readCtx(cmd.Context()))
		if err != nil {
			return repositoryError("listing templates", err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tALIAS\tNAME")
		for _, t := range templates {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", t.ID, t.Alias, t.Name)
		}
		return tw.Flush()
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id|alias>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := application.Repos.Runner.InTx(cmd.Context(), func(dbc dbctx.Context) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				t, err := application.Repos.Templates.GetByAlias(dbc, args[0])
				if err != nil {
					return err
				}
				if t == nil {
					return fmt.Errorf("template %q not found", args[0])
				}
				id = t.ID
			}
			return application.Repos.Templates.Delete(dbc, id)
		})
		if err != nil {
			return repositoryError("deleting template", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted template %s\n", args[0])
		return nil
	},
}

func init() {
	templateAddCmd.Flags().StringVar(&templateName, "name", "", "display name (default: alias)")
	templateAddCmd.Flags().StringVar(&templateDesignFile, "design", "", "file holding the template body")
	templateCmd.AddCommand(templateAddCmd, templateListCmd, templateDeleteCmd)
}
