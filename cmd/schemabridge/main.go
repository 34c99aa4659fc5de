package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schemabridge/schemabridge"
	"github.com/schemabridge/schemabridge/internal/config"
)

var (
	fromFormat    string
	toFormat      string
	inputFile     string
	outputFile    string
	configFile    string
	dbURL         string
	mysqlURL      string
	sqlitePath    string
	tables        string
	excludeTables string
	schemaName    string
	modelName     string
)

var rootCmd = &cobra.Command{
	Use:   "schemabridge",
	Short: "Convert schemas between UML class diagrams and SQL formats",
	Long: `SchemaBridge converts relational schema descriptions between UML class
diagrams (XMI 2.1), SQL DDL scripts, and SQL Schema XML. A schema can also be
introspected from a live PostgreSQL, MySQL, or SQLite database and written in
any of the supported formats.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&fromFormat, "from", "", "Source format: xmi, ddl, or schema-xml")
	rootCmd.Flags().StringVar(&toFormat, "to", "", "Target format: xmi, ddl, or schema-xml")
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file (default: stdin)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "TOML config file with defaults")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string")
	rootCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	rootCmd.Flags().StringVar(&excludeTables, "exclude-tables", "", "Tables to skip (comma-separated, optional)")
	rootCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL)")
	rootCmd.Flags().StringVar(&modelName, "model-name", "", "Name for the extracted model")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyConfigDefaults(cfg)

	// Validate database flags
	dbCount := 0
	if dbURL != "" {
		dbCount++
	}
	if mysqlURL != "" {
		dbCount++
	}
	if sqlitePath != "" {
		dbCount++
	}
	if dbCount > 1 {
		return fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	if dbCount == 1 {
		return runExtract(ctx)
	}
	return runConvert()
}

// applyConfigDefaults fills in flags the user left unset from the config
// file. Flags always win.
func applyConfigDefaults(cfg *config.Config) {
	if fromFormat == "" {
		fromFormat = cfg.DefaultSource
	}
	if toFormat == "" {
		toFormat = cfg.DefaultTarget
	}
	if modelName == "" {
		modelName = cfg.ModelName
	}
	if tables == "" {
		tables = strings.Join(cfg.Introspection.Tables, ",")
	}
	if excludeTables == "" {
		excludeTables = strings.Join(cfg.Introspection.ExcludeTables, ",")
	}
}

// runConvert converts a document between two formats.
func runConvert() error {
	if fromFormat == "" || toFormat == "" {
		return fmt.Errorf("both --from and --to must be specified (or --sqlite/--db-url/--mysql-url for database extraction)")
	}

	input, err := readInput()
	if err != nil {
		return err
	}

	output, err := schemabridge.Convert(fromFormat, toFormat, input)
	if err != nil {
		return err
	}

	return writeOutput(output)
}

// runExtract introspects a database and writes the model in the target
// format.
func runExtract(ctx context.Context) error {
	if toFormat == "" {
		return fmt.Errorf("--to must be specified when extracting from a database")
	}
	if fromFormat != "" {
		return fmt.Errorf("--from cannot be combined with database extraction")
	}

	databaseURL := ""
	switch {
	case sqlitePath != "":
		databaseURL = "sqlite://" + sqlitePath
	case mysqlURL != "":
		databaseURL = "mysql://" + strings.TrimPrefix(mysqlURL, "mysql://")
	default:
		databaseURL = dbURL
	}

	opts := &schemabridge.Options{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(excludeTables),
		SchemaName:    schemaName,
		ModelName:     modelName,
	}

	m, err := schemabridge.ExtractModel(ctx, databaseURL, opts)
	if err != nil {
		return err
	}

	output, err := schemabridge.WriteModel(m, toFormat)
	if err != nil {
		return err
	}

	return writeOutput(output)
}

// parseTableList splits a comma-separated table list, trimming whitespace.
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func readInput() ([]byte, error) {
	if inputFile == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func writeOutput(data []byte) error {
	if outputFile == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
