package db

import (
	"context"
	"fmt"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// PostgresExtractor builds a canonical model from a PostgreSQL schema.
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new PostgreSQL extractor.
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractModel introspects the specified tables into a canonical model.
// If tables is empty, all tables in the schema are extracted.
func (e *PostgresExtractor) ExtractModel(ctx context.Context, tables []string) (*schema.Model, error) {
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
func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema)
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
func (e *PostgresExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	entity := &schema.Entity{Name: tableName}

	if err := e.extractColumns(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := e.extractPrimaryKey(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	if err := e.extractForeignKeys(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	for _, pk := range entity.PrimaryKey {
		if f := entity.Field(pk); f != nil {
			f.Nullable = false
			f.Unique = false
		}
	}

	return entity, nil
}

// extractColumns extracts column information for a table
func (e *PostgresExtractor) extractColumns(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			COALESCE(character_maximum_length, 0),
			COALESCE(numeric_precision, 0),
			COALESCE(numeric_scale, 0),
			CASE WHEN EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.constraint_column_usage ccu
					ON tc.constraint_name = ccu.constraint_name
					AND tc.table_schema = ccu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'UNIQUE'
					AND ccu.column_name = c.column_name
			) THEN true ELSE false END as is_unique
		FROM information_schema.columns c
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, entity.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType, nullable string
		var maxLength, precision, scale int
		var isUnique bool

		if err := rows.Scan(&name, &dataType, &nullable, &maxLength, &precision, &scale, &isUnique); err != nil {
			return err
		}

		mapped, err := mapColumnType(entity.Name, name, dataType)
		if err != nil {
			return err
		}
		if mapped.Length == 0 {
			mapped.Length = maxLength
		}
		if mapped.Precision == 0 && dataType == "numeric" {
			mapped.Precision = precision
			mapped.Scale = scale
		}

		entity.Fields = append(entity.Fields, schema.Field{
			Name:      name,
			Type:      mapped.Type,
			Length:    mapped.Length,
			Precision: mapped.Precision,
			Scale:     mapped.Scale,
			Nullable:  nullable == "YES",
			Unique:    isUnique,
		})
	}

	return rows.Err()
}

// extractPrimaryKey extracts primary key columns
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, entity.Name)
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

// extractForeignKeys marks foreign-key fields from constraint metadata.
func (e *PostgresExtractor) extractForeignKeys(ctx context.Context, entity *schema.Entity) error {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.client.Conn().Query(ctx, query, e.schema, entity.Name)
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
