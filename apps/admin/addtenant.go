package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/storage/database"
)

// addTenant registers a tenant in the directory and provisions its isolated
// database. Idempotent on the database side; re-running for an existing
// tenant ID fails on the directory insert.
func (cli *commandLine) addTenant(id, name string) error {
	ctx := context.Background()
	id = core.CleanString(id, true /* lower */)

	now := time.Now().UTC()
	t := tenant.Tenant{
		ID:        id,
		Name:      core.CleanString(name),
		DBName:    cli.conf.Database.TenantDBName(id),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := cli.tenantRepo.CreateTenant(ctx, t); err != nil {
		return err
	}
	if err := database.CreateTenantDB(cli.conf, t.DBName); err != nil {
		return err
	}
	fmt.Printf("tenant %q created with database %q\n", t.ID, t.DBName)
	return nil
}
