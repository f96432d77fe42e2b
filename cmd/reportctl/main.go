package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"go-contractor/internal/config"
	"go-contractor/internal/database"
	"go-contractor/internal/datastore"
	"go-contractor/internal/engine"
	"go-contractor/internal/features/report"
	"go-contractor/internal/features/template"
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Run contractor reports from the terminal",
	Long: `reportctl runs the same report engine as the API against the configured data store.
Reports are either a standard template (--template) or built ad hoc from a source,
a field list and "field operator value" filters.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("CONTRACTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("driver", "", "data store driver (mongo, postgres, mysql, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "SQL data source name")
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB connection string")
	rootCmd.PersistentFlags().String("db", "", "MongoDB database name")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "log queries")
	for _, name := range []string{"driver", "dsn", "mongo-uri", "db", "json", "debug"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(templatesCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(exportCmd())
}

// loadConfig layers CONTRACTOR_* env and flags over the server's .env config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("driver"); v != "" {
		cfg.DatastoreDriver = v
	}
	if v := viper.GetString("dsn"); v != "" {
		cfg.DatastoreDSN = v
	}
	if v := viper.GetString("mongo-uri"); v != "" {
		cfg.MongoURI = v
	}
	if v := viper.GetString("db"); v != "" {
		cfg.DBName = v
	}
	return cfg, nil
}

func openClient(ctx context.Context, cfg *config.Config) (datastore.Client, func(), error) {
	if cfg.DatastoreDriver == "" || cfg.DatastoreDriver == "mongo" {
		db, err := database.Connect(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		return datastore.NewMongoClient(db.DB), func() { _ = db.DB.Client().Disconnect(context.Background()) }, nil
	}
	if cfg.DatastoreDSN == "" {
		return nil, nil, fmt.Errorf("--dsn is required for driver %s", cfg.DatastoreDriver)
	}
	client, err := datastore.OpenSQL(ctx, cfg.DatastoreDriver, cfg.DatastoreDSN)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// withService wires the report service the way the API does, minus metrics.
func withService(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, svc report.ReportService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, closeFn, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	logger := zap.NewNop()
	if viper.GetBool("debug") {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	cat := engine.NewConstructionCatalog()
	exec := engine.NewExecutor(engine.NewTranslator(cat, cfg.ReportDefaultLimit, cfg.ReportMaxLimit), client, logger, nil)
	shaper := engine.NewShaper(cfg.ReportCurrencySymbol, cfg.ReportDateLayout, engine.DateFallback(cfg.ReportDateFallback))
	return fn(ctx, cfg, report.NewReportService(cat, exec, shaper, nil, logger))
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List data sources and their fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := engine.NewConstructionCatalog()
			if viper.GetBool("json") {
				return printJSON(cat.Sources())
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Source", "Field", "Label", "Type"})
			for _, def := range cat.Sources() {
				for _, f := range def.Fields {
					tw.AppendRow(table.Row{def.Name, f.Key, f.Label, f.Type})
				}
				tw.AppendSeparator()
			}
			tw.Render()
			return nil
		},
	}
}

func templatesCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List standard report templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" && !engine.Category(category).Valid() {
				return fmt.Errorf("unknown category %q", category)
			}
			templates, err := template.LoadStandardTemplates(engine.NewConstructionCatalog())
			if err != nil {
				return err
			}
			out := make([]engine.Template, 0, len(templates))
			for _, t := range templates {
				if category == "" || t.Category == engine.Category(category) {
					out = append(out, t)
				}
			}
			if viper.GetBool("json") {
				return printJSON(out)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Source", "Fields", "Description"})
			for _, t := range out {
				tw.AppendRow(table.Row{t.ID, t.Name, t.Config.DataSource, len(t.Fields), t.Description})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category filter (standard, custom, ai-generated)")
	return cmd
}

func runCmd() *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a report and print it as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, svc report.ReportService) error {
				rc, _, err := opts.configuration(engine.NewConstructionCatalog())
				if err != nil {
					return err
				}
				res, err := svc.Run(ctx, rc)
				if err != nil {
					return err
				}
				for _, key := range res.Dropped {
					fmt.Fprintf(os.Stderr, "warning: field %s is not queryable and was skipped\n", key)
				}
				if viper.GetBool("json") {
					return printJSON(res)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				header := table.Row{}
				for _, label := range res.Table.Labels() {
					header = append(header, label)
				}
				tw.AppendHeader(header)
				for _, row := range res.Table.Rows {
					r := make(table.Row, len(row))
					for i, v := range row {
						r[i] = v
					}
					tw.AppendRow(r)
				}
				tw.AppendFooter(table.Row{fmt.Sprintf("%s rows", humanize.Comma(int64(res.RowCount)))})
				tw.Render()
				return nil
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		opts   reportOptions
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report to CSV or Excel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, svc report.ReportService) error {
				rc, name, err := opts.configuration(engine.NewConstructionCatalog())
				if err != nil {
					return err
				}
				file, err := svc.Export(ctx, rc, name, format)
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = file.Name
				} else if info, err := os.Stat(path); err == nil && info.IsDir() {
					path = filepath.Join(path, file.Name)
				}
				if err := os.WriteFile(path, file.Data, 0o644); err != nil {
					return err
				}
				fmt.Printf("wrote %s (%s rows, %s)\n", path, humanize.Comma(int64(file.Rows)), humanize.Bytes(uint64(len(file.Data))))
				return nil
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "export format (csv, xlsx)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: generated name in the working directory)")
	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// commands give the backend a generous but bounded window
const queryTimeout = 2 * time.Minute

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		cobra.OnFinalize(cancel)
		cmd.SetContext(ctx)
		return nil
	}
}
