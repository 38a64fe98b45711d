package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/schemastore/internal/app"
)

var (
	// Set during PersistentPreRunE.
	cfg         *app.Config
	configPath  string
	application *app.App

	cfgFile string
	logMode string
)

var rootCmd = &cobra.Command{
	Use:   "schemastore",
	Short: "Content-type schema repository",
	Long: `schemastore - content-type schema repository

Stores content-type schemas (property groups, allowed templates and allowed
child types) in a relational database and moves them in and out as YAML.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsApp(cmd) {
			return nil
		}
		var err error
		cfg, configPath, err = app.LoadConfig(cfgFile)
		if err != nil {
			return configError("loading configuration", err)
		}
		if logMode != "" {
			cfg.Log.Mode = logMode
		}
		application, err = app.New(cmd.Context(), cfg)
		if err != nil {
			return databaseError("initializing", err)
		}
		if configPath != "" {
			application.Log.Debug("configuration loaded", "path", configPath)
		}
		return application.Start()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

const (
	groupSchema   = "schema"
	groupTemplate = "template"
	groupUtility  = "utility"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover schemastore.yaml)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode: development, production or silent")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupSchema, Title: "Schemas:"},
		&cobra.Group{ID: groupTemplate, Title: "Templates:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	for _, c := range []*cobra.Command{getCmd, listCmd, findCmd, importCmd, exportCmd, moveCmd, deleteCmd} {
		c.GroupID = groupSchema
		rootCmd.AddCommand(c)
	}
	templateCmd.GroupID = groupTemplate
	rootCmd.AddCommand(templateCmd)

	migrateCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "version":
		return true
	}
	return false
}

func closeApp() {
	if application != nil {
		application.Close()
		application = nil
	}
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	// PersistentPostRun is skipped when RunE fails.
	closeApp()
	if err != nil {
		exitWithError(err)
	}
}
