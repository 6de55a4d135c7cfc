package store

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"portfolio-backend/app/server/models"
	"testing"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=postgres sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestProjectFilterPublicOnlyOverridesVisibility(t *testing.T) {
	hidden := false
	f := ProjectFilter{IsPublic: &hidden}.PublicOnly()

	require.NotNil(t, f.IsPublic)
	assert.True(t, *f.IsPublic)
	assert.False(t, hidden)
}

func TestProjectFilterSQL(t *testing.T) {
	db := dryRunDB(t)

	category := models.ProjectCategoryBackend
	tag := "api"
	f := ProjectFilter{Category: &category, Tag: &tag}.PublicOnly()

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var projects []models.Project
		return tx.Model(&models.Project{}).Scopes(f.scopes()...).Find(&projects)
	})

	assert.Contains(t, sql, `is_public = true`)
	assert.Contains(t, sql, `category = 'backend'`)
	assert.Contains(t, sql, `'api' = ANY(tags)`)
	assert.NotContains(t, sql, `featured`)
}

func TestQuerySpecsDefaultSortIsAllowed(t *testing.T) {
	assert.Contains(t, ProjectQuery.SortFields, ProjectQuery.DefaultSort)
	assert.Contains(t, ContactQuery.SortFields, ContactQuery.DefaultSort)
	assert.Contains(t, UserQuery.SortFields, UserQuery.DefaultSort)
}

func TestProjectWritableColumnsExcludeMetrics(t *testing.T) {
	for _, column := range projectWritableColumns {
		assert.NotContains(t, column, "metrics_")
	}
}

func TestContactWritableColumnsExcludeSubmission(t *testing.T) {
	for _, column := range []string{"name", "email", "subject", "message", "is_spam", "ip_address"} {
		assert.NotContains(t, contactWritableColumns, column)
	}
}
