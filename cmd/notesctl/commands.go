package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/config"
	"notes-api/internal/database"
	"notes-api/internal/logging"
	"notes-api/internal/maintenance"
	"notes-api/internal/markdown"
	"notes-api/internal/models"
	"notes-api/internal/render"
)

type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "notesctl",
		Short:         "Maintenance tool for notes-api",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			logCfg := cfg.Logging
			logCfg.Format = "console"
			log, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("NOTES_CONFIG"), "path to config file")

	root.AddCommand(
		a.tablesCmd(),
		a.migrateCmd(),
		a.fixRolesCmd(),
		a.createAdminCmd(),
		a.renderCmd(),
		a.smokeCmd(),
	)
	return root
}

func (a *app) openDB() (*gorm.DB, error) {
	return database.Open(a.cfg.Database.Path, a.cfg.Database.LogLevel)
}

func (a *app) tablesCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables with row counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			tables, err := maintenance.InspectTables(db)
			if err != nil {
				return err
			}
			return printTables(cmd.OutOrStdout(), tables, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show columns")
	return cmd
}

func printTables(out io.Writer, tables []maintenance.TableInfo, verbose bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, t := range tables {
		fmt.Fprintf(w, "%s\t%d\n", t.Name, t.Rows)
		if !verbose {
			continue
		}
		for _, c := range t.Columns {
			var flags []string
			if c.Primary {
				flags = append(flags, "pk")
			}
			if c.Nullable {
				flags = append(flags, "null")
			}
			fmt.Fprintf(w, "  %s\t%s %s\n", c.Name, c.Type, strings.Join(flags, ","))
		}
	}
	return w.Flush()
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed default roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := database.Seed(db, a.cfg.Auth.BootstrapUsername, a.cfg.Auth.BootstrapPassword, a.log); err != nil {
				return err
			}
			a.log.Info("migration complete", zap.String("path", a.cfg.Database.Path))
			return nil
		},
	}
}

func (a *app) fixRolesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix-roles",
		Short: "Normalize stored role names on roles and admins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			fixes, err := maintenance.FixRoleNames(db, dryRun, a.log)
			if err != nil {
				return err
			}
			verb := "fixed"
			if dryRun {
				verb = "would fix"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d role name(s)\n", verb, len(fixes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func (a *app) createAdminCmd() *cobra.Command {
	var username, password, role string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("NOTES_ADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("--password or NOTES_ADMIN_PASSWORD is required")
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			if err := database.Seed(db, "", "", a.log); err != nil {
				return err
			}
			var count int64
			if err := db.Model(&models.Role{}).Where("name = ?", auth.NormalizeRoleName(role)).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("role %q does not exist", role)
			}
			admin, err := database.CreateAdmin(db, username, password, role)
			if err != nil {
				return err
			}
			a.log.Info("admin created", zap.String("id", admin.ID), zap.String("username", admin.Username), zap.String("role", admin.Role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password (defaults to NOTES_ADMIN_PASSWORD)")
	cmd.Flags().StringVarP(&role, "role", "r", auth.RoleEditor, "role name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [file]",
		Short: "Render a Markdown file (or stdin) to sanitized HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			text, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			rc := render.New(markdown.New(), render.Options{
				LargeInputThreshold: a.cfg.Render.LargeInputThreshold,
				LargeWorkers:        a.cfg.Render.LargeWorkers,
				Logger:              a.log,
			})
			defer rc.Stop()

			html, err := rc.Markup(cmd.Context(), string(text))
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}
}

func (a *app) smokeCmd() *cobra.Command {
	var opts maintenance.SmokeOptions
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Exercise a running server's API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Password == "" {
				opts.Password = os.Getenv("NOTES_ADMIN_PASSWORD")
			}
			results := maintenance.RunSmoke(cmd.Context(), opts)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			failed := 0
			for _, r := range results {
				status := "ok"
				if !r.OK() {
					status = r.Err.Error()
					failed++
				}
				fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\t%s\n", r.Name, r.Method, r.Path, r.Status, r.Duration.Round(time.Microsecond), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:8008", "server base URL")
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "admin username for authenticated checks")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "admin password (defaults to NOTES_ADMIN_PASSWORD)")
	return cmd
}
