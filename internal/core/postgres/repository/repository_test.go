package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"go-procflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newDryRunDB builds statements without a server and records their SQL.
func newDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=procflow_dryrun sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	var statements []string
	capture := func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capture_update", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	return db, &statements
}

func TestInsertWorkflowInstance_ignoresDuplicateExternalID(t *testing.T) {
	db, statements := newDryRunDB(t)
	repo := NewWorkflowRepository(db)

	inst := domain.NewWorkflowInstance("p-1", "invoice", nil, "alice", time.Now())
	require.NoError(t, repo.InsertWorkflowInstance(context.Background(), inst))

	// Nothing is executed, so the insert reports no rows and the stored row
	// is read back by external id.
	require.Len(t, *statements, 2)
	sql := (*statements)[0]
	assert.True(t, strings.HasPrefix(sql, `INSERT INTO "workflow_instances"`), sql)
	assert.Contains(t, sql, `ON CONFLICT ("external_instance_id") DO NOTHING`)
	assert.True(t, strings.HasPrefix((*statements)[1], `SELECT * FROM "workflow_instances"`), (*statements)[1])
	assert.Contains(t, (*statements)[1], "external_instance_id = $1")
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", inst.ID.String())
	assert.Equal(t, "p-1", inst.ExternalInstanceID, "an empty read-back leaves the instance alone")
}

func TestUpdateWorkflowInstance_isVersionGuarded(t *testing.T) {
	db, statements := newDryRunDB(t)
	repo := NewWorkflowRepository(db)

	inst := domain.NewWorkflowInstance("p-1", "invoice", nil, "alice", time.Now())
	inst.Terminate(time.Now())

	// Nothing is executed, so no row matches.
	err := repo.UpdateWorkflowInstance(context.Background(), inst)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, 1, inst.Version, "version only moves on success")

	require.Len(t, *statements, 1)
	sql := (*statements)[0]
	assert.Contains(t, sql, `UPDATE "workflow_instances" SET`)
	assert.Contains(t, sql, `"version"=`)
	assert.Contains(t, sql, "WHERE id = $")
	assert.Contains(t, sql, "AND version = $")
	assert.NotContains(t, sql, `"started_at"`, "start columns are immutable")
}

func TestListQueries_ordering(t *testing.T) {
	db, statements := newDryRunDB(t)
	store := NewShadowStore(db)
	ctx := context.Background()

	_, err := store.ListAllWorkflowInstances(ctx)
	require.NoError(t, err)
	_, err = store.FindWorkflowInstancesByBusinessKey(ctx, "ORDER-001")
	require.NoError(t, err)
	_, err = store.FindTaskAssignmentsByAssigneeAndStatus(ctx, "alice", domain.TaskClaimed)
	require.NoError(t, err)

	require.Len(t, *statements, 3)
	assert.Contains(t, (*statements)[0], "ORDER BY started_at ASC")
	assert.Contains(t, (*statements)[1], "business_key = $1")
	assert.Contains(t, (*statements)[2], "assignee = $1 AND status = $2")
	assert.Contains(t, (*statements)[2], "ORDER BY created_at ASC")
}

func TestTaskAssignment_insertAndGuardedUpdate(t *testing.T) {
	db, statements := newDryRunDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	a := domain.NewTaskAssignment(domain.Task{ID: "t-1", ProcessInstanceID: "p-1"}, "alice", time.Now())
	require.NoError(t, repo.InsertTaskAssignment(ctx, a))
	require.NoError(t, a.MarkCompleted())
	assert.ErrorIs(t, repo.UpdateTaskAssignment(ctx, a), domain.ErrVersionConflict)

	require.Len(t, *statements, 2)
	assert.Contains(t, (*statements)[0], `INSERT INTO "task_assignments"`)
	assert.NotContains(t, (*statements)[0], "ON CONFLICT", "claims are append-only")
	assert.Contains(t, (*statements)[1], "WHERE id = $")
}
