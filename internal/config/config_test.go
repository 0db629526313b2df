package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSecrets(context.Context, string) (string, error) {
	return "", errors.New("unexpected secret lookup")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := load(context.Background(), noSecrets)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.ContentDriver)
	assert.Equal(t, 60, cfg.JWTExpirationMinutes)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.ContactEnabled())
	assert.Empty(t, cfg.MetricsNamespace)
}

func TestLoad_MetricsNamespace(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("METRICS_NAMESPACE", "Website/MediaAudit")

	cfg, err := load(context.Background(), noSecrets)
	require.NoError(t, err)
	assert.Equal(t, "Website/MediaAudit", cfg.MetricsNamespace)
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := load(context.Background(), noSecrets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3Bucket")
}

func TestLoad_OneSidedCredentials(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "memory")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("S3_ACCESS_KEY", "AKIA")

	_, err := load(context.Background(), noSecrets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3SecretKey")
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "couchdb")
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := load(context.Background(), noSecrets)
	require.Error(t, err)
}

func TestLoad_DatabaseURLFromSecret(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "postgres")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_SECRET_ARN", "arn:aws:secretsmanager:eu-central-1:1:secret:db")

	var asked string
	fetch := func(_ context.Context, arn string) (string, error) {
		asked = arn
		return `{"DATABASE_URL":"postgres://u:p@db:5432/site"}`, nil
	}

	cfg, err := load(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:secretsmanager:eu-central-1:1:secret:db", asked)
	assert.Equal(t, "postgres://u:p@db:5432/site", cfg.DatabaseURL)
}

func TestLoad_SecretFailureIsFatal(t *testing.T) {
	t.Setenv("CONTENT_DRIVER", "postgres")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_SECRET_ARN", "arn:x")

	_, err := load(context.Background(), noSecrets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get secret")
}
