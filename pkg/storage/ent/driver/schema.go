package entdriver

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	turnsTableName = "turns"

	columnID        = "id"
	columnUserID    = "user_id"
	columnRole      = "role"
	columnContent   = "content"
	columnCreatedAt = "created_at"
)

var (
	// TurnsColumns holds the columns for the "turns" table.
	TurnsColumns = []*schema.Column{
		{Name: columnID, Type: field.TypeInt, Increment: true},
		{Name: columnUserID, Type: field.TypeString},
		{Name: columnRole, Type: field.TypeString, Size: 16},
		{Name: columnContent, Type: field.TypeString, Size: 2147483647},
		{Name: columnCreatedAt, Type: field.TypeTime},
	}

	// TurnsTable holds the schema information for the "turns" table. Ids are
	// monotonic, so ordering by id is chronological within a user.
	TurnsTable = &schema.Table{
		Name:       turnsTableName,
		Columns:    TurnsColumns,
		PrimaryKey: []*schema.Column{TurnsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "turn_user_id_id",
				Unique:  false,
				Columns: []*schema.Column{TurnsColumns[1], TurnsColumns[0]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		TurnsTable,
	}
)
