package db

import (
	"context"
	"fmt"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// MySQLExtractor builds a canonical model from a MySQL schema.
type MySQLExtractor struct {
	client *MySQLClient
	schema string
}

// NewMySQLExtractor creates a new MySQL extractor.
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractModel introspects the specified tables into a canonical model.
// If tables is empty, all tables in the schema are extracted.
func (e *MySQLExtractor) ExtractModel(ctx context.Context, tables []string) (*schema.Model, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	m := &schema.Model{}
	for _, tableName := range tableNames {
		entity, err := e.extractEntity(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		m.Entities = append(m.Entities, *entity)
	}

	return finishModel(m)
}

// getTableNames returns the list of tables to extract
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// extractEntity extracts one table's columns, primary key and foreign keys.
func (e *MySQLExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	entity := &schema.Entity{Name: tableName}

	if err := e.extractColumns(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := e.extractForeignKeys(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	return entity, nil
}

// extractColumns extracts column information for a table. COLUMN_KEY
// doubles as the primary-key and unique-constraint source.
func (e *MySQLExtractor) extractColumns(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schema, entity.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, columnType, nullable, columnKey string
		if err := rows.Scan(&name, &columnType, &nullable, &columnKey); err != nil {
			return err
		}

		mapped, err := mapColumnType(entity.Name, name, columnType)
		if err != nil {
			return err
		}

		entity.Fields = append(entity.Fields, schema.Field{
			Name:      name,
			Type:      mapped.Type,
			Length:    mapped.Length,
			Precision: mapped.Precision,
			Scale:     mapped.Scale,
			Nullable:  nullable == "YES",
			Unique:    columnKey == "UNI",
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return e.extractPrimaryKey(ctx, entity)
}

// extractPrimaryKey extracts primary key columns in key order.
func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schema, entity.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return err
		}
		entity.PrimaryKey = append(entity.PrimaryKey, colName)
	}

	return rows.Err()
}

// extractForeignKeys marks foreign-key fields from key usage metadata.
func (e *MySQLExtractor) extractForeignKeys(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
		FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY ORDINAL_POSITION
	`

	rows, err := e.client.DB().QueryContext(ctx, query, e.schema, entity.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var column, refTable, refColumn string
		if err := rows.Scan(&column, &refTable, &refColumn); err != nil {
			return err
		}

		field := entity.Field(column)
		if field == nil {
			return schema.NewError(schema.ErrMalformedDocument, entity.Name+"."+column,
				"foreign key names unknown column %q", column)
		}
		field.Ref = &schema.Ref{Entity: refTable, Field: refColumn}
	}

	return rows.Err()
}
