//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// databaseEnv points both stores at the given backend and clears them.
func databaseEnv(t *testing.T, backend, connStr string) []string {
	env := []string{
		"SMARTERTIPS_DB_BACKEND=" + backend,
		"SMARTERTIPS_DB_CONNECT=" + connStr,
		"SMARTERTIPS_COLOR=no",
	}
	mustRun(t, env, "store", "clear")
	mustRun(t, env, "store", "migrate")
	return env
}

// TestSmarterTipsWithMySQL runs the train and predict flow against MySQL.
func TestSmarterTipsWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "smartertips",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/smartertips?parseTime=true", host, port.Port())
	env := databaseEnv(t, "mysql", connStr)

	seedBoston(t, env)
	pred := trainAndPredict(t, env)
	assert.InDelta(t, 30.0, pred.PredictedUsage, 0.1)

	mustRun(t, env, "store", "status")
	mustRun(t, env, "models", "show", "Jaylen Brown")
}

// TestSmarterTipsWithPostgres runs the train and predict flow against PostgreSQL.
func TestSmarterTipsWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	env := databaseEnv(t, "postgresql", connStr)

	seedBoston(t, env)
	pred := trainAndPredict(t, env)
	assert.InDelta(t, 30.0, pred.PredictedUsage, 0.1)

	mustRun(t, env, "store", "status")
	mustRun(t, env, "models", "show", "Jaylen Brown")
}
