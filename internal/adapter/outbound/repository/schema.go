package repository

import (
	"context"
	"fmt"
	"regexp"
)

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func validateSchemaName(schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return fmt.Errorf("%w: schema %q must be a lowercase SQL identifier", ErrInvalidArgument, schema)
	}
	return nil
}

// SchemaStatements returns the DDL that creates the request ledger in schema.
func SchemaStatements(schema string) ([]string, error) {
	if err := validateSchemaName(schema); err != nil {
		return nil, err
	}
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.requests (
			id             UUID PRIMARY KEY,
			sent_at        TIMESTAMPTZ NOT NULL,
			month          CHAR(7) NOT NULL,
			request_type   TEXT NOT NULL,
			category       TEXT NOT NULL,
			description    TEXT NOT NULL,
			urgency        TEXT NOT NULL CHECK (urgency IN ('High', 'Medium', 'Low')),
			effort         TEXT NOT NULL CHECK (effort IN ('Small', 'Medium', 'Large')),
			full_text      TEXT NOT NULL,
			message_length INTEGER NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (sent_at, full_text)
		)`, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_requests_month ON %s.requests (month)`, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_requests_category ON %s.requests (category)`, schema),
	}, nil
}

// Migrate creates the request ledger schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db DB, schema string) error {
	statements, err := SchemaStatements(schema)
	if err != nil {
		return err
	}

	tm := NewTransactionManager(db)
	return tm.WithTransaction(ctx, func(txCtx context.Context) error {
		qi := GetQueryInterface(txCtx, db)
		for _, statement := range statements {
			if _, err := qi.Exec(txCtx, statement); err != nil {
				return WrapError(err, "migrate schema")
			}
		}
		return nil
	})
}
