package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/domain/contenttype"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/query"
	"github.com/yungbote/schemastore/internal/schemafile"
)

var errDryRun = errors.New("dry run")

func readCtx(ctx context.Context) dbctx.Context { return dbctx.New(ctx, nil) }

// resolveSchemaID accepts a numeric id or an alias.
func resolveSchemaID(dbc dbctx.Context, repo domainagg.ContentTypeRepository, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		ok, err := repo.Exists(dbc, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("schema %d not found", id)
		}
		return id, nil
	}
	s, err := repo.GetByAlias(dbc, ref)
	if err != nil {
		return 0, err
	}
	if s == nil {
		return 0, fmt.Errorf("schema %q not found", ref)
	}
	return s.ID, nil
}

var getCmd = &cobra.Command{
	Use:   "get <id|alias>",
	Short: "Print one schema as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbc := readCtx(cmd.Context())
		repo := application.Repos.Schemas
		id, err := resolveSchemaID(dbc, repo, args[0])
		if err != nil {
			return repositoryError("resolving schema", err)
		}
		doc, err := (&schemafile.Exporter{Schemas: repo}).Export(dbc, id)
		if err != nil {
			return repositoryError("loading schema", err)
		}
		return schemafile.Encode(cmd.OutOrStdout(), doc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbc := readCtx(cmd.Context())
		var schemas []*contenttype.ContentTypeSchema
		for s, err := range application.Repos.Schemas.GetAll(dbc) {
			if err != nil {
				return repositoryError("listing schemas", err)
			}
			schemas = append(schemas, s)
		}
		return writeSummaries(cmd.OutOrStdout(), schemas)
	},
}

var (
	findAlias     []string
	findName      string
	findParent    int64
	findRoot      bool
	findContainer bool
	findTemplate  int64
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find schemas matching filters",
	Example: `  # Schemas allowed at the root that use template 12
  schemastore find --root --template 12

  # Schemas by alias
  schemastore find --alias article,comment`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		preds := findPredicates(cmd)
		dbc := readCtx(cmd.Context())
		var schemas []*contenttype.ContentTypeSchema
		for s, err := range application.Repos.Schemas.FindByQuery(dbc, preds...) {
			if err != nil {
				return repositoryError("finding schemas", err)
			}
			schemas = append(schemas, s)
		}
		return writeSummaries(cmd.OutOrStdout(), schemas)
	},
}

func findPredicates(cmd *cobra.Command) []query.Predicate {
	var preds []query.Predicate
	switch len(findAlias) {
	case 0:
	case 1:
		preds = append(preds, query.AliasEquals(findAlias[0]))
	default:
		preds = append(preds, query.AliasIn(findAlias...))
	}
	if findName != "" {
		preds = append(preds, query.NameContains(findName))
	}
	if cmd.Flags().Changed("parent") {
		preds = append(preds, query.ParentIs(findParent))
	}
	if cmd.Flags().Changed("root") {
		preds = append(preds, query.AllowedAtRoot(findRoot))
	}
	if cmd.Flags().Changed("container") {
		preds = append(preds, query.IsContainer(findContainer))
	}
	if findTemplate > 0 {
		preds = append(preds, query.UsesTemplate(findTemplate))
	}
	return preds
}

func writeSummaries(w io.Writer, schemas []*contenttype.ContentTypeSchema) error {
	aliases := make(map[int64]string, len(schemas))
	for _, s := range schemas {
		aliases[s.ID] = s.Alias
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tALIAS\tNAME\tPARENT\tTEMPLATES")
	for _, s := range schemas {
		parent := ""
		if s.ParentID > 0 {
			parent = aliases[s.ParentID]
			if parent == "" {
				parent = strconv.FormatInt(s.ParentID, 10)
			}
		}
		sum := schemafile.Summarize(s, parent)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", sum.ID, sum.Alias, sum.Name, sum.Parent, sum.Templates)
	}
	return tw.Flush()
}

var (
	importCreateTemplates bool
	importDryRun          bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Create or update schemas from a YAML document",
	Long: `Create or update schemas from a YAML document. Schemas are matched by
alias; the whole document is applied in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		im := &schemafile.Importer{
			Schemas:         application.Repos.Schemas,
			Templates:       application.Repos.Templates,
			Log:             application.Log,
			CreateTemplates: importCreateTemplates,
		}
		var res *schemafile.ImportResult
		err = application.Repos.Runner.InTx(cmd.Context(), func(dbc dbctx.Context) error {
			var err error
			if res, err = im.Import(dbc, doc); err != nil {
				return err
			}
			if importDryRun {
				return errDryRun
			}
			return nil
		})
		if err != nil && !errors.Is(err, errDryRun) {
			return repositoryError("importing schemas", err)
		}
		out := cmd.OutOrStdout()
		if importDryRun {
			fmt.Fprintln(out, "dry run: no changes committed")
		}
		fmt.Fprintf(out, "created: %s\n", strings.Join(res.Created, ", "))
		fmt.Fprintf(out, "updated: %s\n", strings.Join(res.Updated, ", "))
		if len(res.TemplatesCreated) > 0 {
			fmt.Fprintf(out, "templates created: %s\n", strings.Join(res.TemplatesCreated, ", "))
		}
		return nil
	},
}

func readDocument(cmd *cobra.Command, path string) (*schemafile.Document, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, documentError("opening document", err)
		}
		defer f.Close()
		r = f
	}
	doc, err := schemafile.Decode(r)
	if err != nil {
		return nil, documentError("reading document", err)
	}
	return doc, nil
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [id|alias...]",
	Short: "Write schemas to a YAML document",
	Long:  `Write the given schemas, or every schema when none are named, to a YAML document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbc := readCtx(cmd.Context())
		repo := application.Repos.Schemas
		ids := make([]int64, 0, len(args))
		for _, ref := range args {
			id, err := resolveSchemaID(dbc, repo, ref)
			if err != nil {
				return repositoryError("resolving schema", err)
			}
			ids = append(ids, id)
		}
		doc, err := (&schemafile.Exporter{Schemas: repo}).Export(dbc, ids...)
		if err != nil {
			return repositoryError("exporting schemas", err)
		}
		if exportOutput == "" || exportOutput == "-" {
			return schemafile.Encode(cmd.OutOrStdout(), doc)
		}
		f, err := os.Create(exportOutput)
		if err != nil {
			return documentError("creating output", err)
		}
		if err := schemafile.Encode(f, doc); err != nil {
			_ = f.Close()
			return documentError("writing output", err)
		}
		return f.Close()
	},
}

var moveParent string

var moveCmd = &cobra.Command{
	Use:   "move <id|alias> --parent <id|alias|root>",
	Short: "Move a schema below another schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := application.Repos.Schemas
		err := application.Repos.Runner.InTx(cmd.Context(), func(dbc dbctx.Context) error {
			id, err := resolveSchemaID(dbc, repo, args[0])
			if err != nil {
				return err
			}
			var parentID int64
			if moveParent != "" && moveParent != "root" {
				if parentID, err = resolveSchemaID(dbc, repo, moveParent); err != nil {
					return err
				}
			}
			s, err := repo.Get(dbc, id)
			if err != nil {
				return err
			}
			s.SetParentID(parentID)
			return repo.PersistUpdated(dbc, s)
		})
		if err != nil {
			return repositoryError("moving schema", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "moved %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id|alias>",
	Short: "Delete a schema and every row that depends on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := application.Repos.Schemas
		var dependents int64
		err := application.Repos.Runner.InTx(cmd.Context(), func(dbc dbctx.Context) error {
			id, err := resolveSchemaID(dbc, repo, args[0])
			if err != nil {
				return err
			}
			if dependents, err = application.Repos.Dependents.CountByNodeID(dbc, id); err != nil {
				return err
			}
			return repo.Delete(dbc, id)
		})
		if err != nil {
			return repositoryError("deleting schema", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%d dependent rows)\n", args[0], dependents)
		return nil
	},
}

func init() {
	f := findCmd.Flags()
	f.StringSliceVar(&findAlias, "alias", nil, "match alias (comma separated for several)")
	f.StringVar(&findName, "name", "", "match name fragment")
	f.Int64Var(&findParent, "parent", 0, "match parent schema id (0 for root)")
	f.BoolVar(&findRoot, "root", false, "match schemas allowed at the root")
	f.BoolVar(&findContainer, "container", false, "match container schemas")
	f.Int64Var(&findTemplate, "template", 0, "match schemas allowing this template id")

	importCmd.Flags().BoolVar(&importCreateTemplates, "create-templates", true, "create referenced templates that do not exist")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "roll back instead of committing")

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	moveCmd.Flags().StringVar(&moveParent, "parent", "", "new parent schema, or root")
	_ = moveCmd.MarkFlagRequired("parent")
}
