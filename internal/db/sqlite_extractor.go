package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// SQLiteExtractor builds a canonical model from a SQLite database.
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite extractor.
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractModel introspects the specified tables into a canonical model.
// If tables is empty, all tables in the database are extracted.
func (e *SQLiteExtractor) ExtractModel(ctx context.Context, tables []string) (*schema.Model, error) {
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
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractEntity extracts one table's columns, primary key and foreign keys.
func (e *SQLiteExtractor) extractEntity(ctx context.Context, tableName string) (*schema.Entity, error) {
	entity := &schema.Entity{Name: tableName}

	if err := e.extractColumns(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := e.extractForeignKeys(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	return entity, nil
}

// extractColumns fills in fields and the primary key from table_info.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, entity *schema.Entity) error {
	query := fmt.Sprintf("PRAGMA table_info(%s)", entity.Name)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	// pk order in table_info is 1-based; collect then sort by order.
	type pkEntry struct {
		name  string
		order int
	}
	var pks []pkEntry

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pkOrder int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return err
		}

		mapped, err := mapColumnType(entity.Name, name, colType)
		if err != nil {
			return err
		}

		field := schema.Field{
			Name:      name,
			Type:      mapped.Type,
			Length:    mapped.Length,
			Precision: mapped.Precision,
			Scale:     mapped.Scale,
			Nullable:  notNull == 0 && pkOrder == 0,
		}
		entity.Fields = append(entity.Fields, field)

		if pkOrder > 0 {
			pks = append(pks, pkEntry{name: name, order: pkOrder})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for order := 1; order <= len(pks); order++ {
		for _, pk := range pks {
			if pk.order == order {
				entity.PrimaryKey = append(entity.PrimaryKey, pk.name)
			}
		}
	}

	// Single-column unique indexes mark unique fields.
	for i := range entity.Fields {
		if entity.IsPrimaryKey(entity.Fields[i].Name) {
			continue
		}
		isUnique, err := e.isColumnUnique(ctx, entity.Name, entity.Fields[i].Name)
		if err != nil {
			return err
		}
		entity.Fields[i].Unique = isUnique
	}

	return nil
}

// isColumnUnique checks if a column has a single-column unique index.
func (e *SQLiteExtractor) isColumnUnique(ctx context.Context, tableName, columnName string) (bool, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", tableName)
	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return false, err
		}
		if unique != 1 || strings.HasPrefix(name, "sqlite_autoindex") && origin == "pk" {
			continue
		}

		columns, err := e.indexColumns(ctx, name)
		if err != nil {
			return false, err
		}
		if len(columns) == 1 && columns[0] == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", indexName)
	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}

// extractForeignKeys marks foreign-key fields from foreign_key_list.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, entity *schema.Entity) error {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", entity.Name)

	rows, err := e.client.DB().QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return err
		}

		field := entity.Field(fromCol)
		if field == nil {
			return schema.NewError(schema.ErrMalformedDocument, entity.Name+"."+fromCol,
				"foreign key names unknown column %q", fromCol)
		}
		refField := toCol.String
		if !toCol.Valid {
			// SQLite leaves the target column empty when the FK
			// references the target's primary key implicitly.
			refField = "id"
		}
		field.Ref = &schema.Ref{Entity: targetTable, Field: refField}
	}

	return rows.Err()
}
