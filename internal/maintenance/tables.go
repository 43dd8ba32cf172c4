// Package maintenance holds the operations behind notesctl: schema inspection,
// data repair and an HTTP smoke test against a running server.
package maintenance

import (
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Primary  bool
}

// TableInfo summarizes a table.
type TableInfo struct {
	Name    string
	Rows    int64
	Columns []Column
}

// InspectTables lists every table with its row count and columns, sorted by name.
func InspectTables(db *gorm.DB) ([]TableInfo, error) {
	migrator := db.Migrator()
	names, err := migrator.GetTables()
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	sort.Strings(names)

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info := TableInfo{Name: name}
		if err := db.Table(name).Count(&info.Rows).Error; err != nil {
			return nil, fmt.Errorf("count rows in %s: %w", name, err)
		}

		cols, err := migrator.ColumnTypes(name)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", name, err)
		}
		for _, col := range cols {
			c := Column{Name: col.Name(), Type: col.DatabaseTypeName()}
			if nullable, ok := col.Nullable(); ok {
				c.Nullable = nullable
			}
			if pk, ok := col.PrimaryKey(); ok {
				c.Primary = pk
			}
			info.Columns = append(info.Columns, c)
		}
		tables = append(tables, info)
	}
	return tables, nil
}
