package firebaseapp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"notification-dispatch/internal/config"
	"notification-dispatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServiceAccountJSON_UnescapesPrivateKey(t *testing.T) {
	cfg := config.FirebaseConfig{
		ProjectID:   "proj",
		ClientEmail: "svc@proj.iam.gserviceaccount.com",
		PrivateKey:  `line1\nline2`,
	}

	raw, err := serviceAccountJSON(cfg.ProjectID, cfg.ClientEmail, cfg.PrivateKeyPEM(), "")
	require.NoError(t, err)

	var sa serviceAccount
	require.NoError(t, json.Unmarshal(raw, &sa))
	assert.Equal(t, "service_account", sa.Type)
	assert.Equal(t, "proj", sa.ProjectID)
	assert.Equal(t, "line1\nline2", sa.PrivateKey)
	assert.Equal(t, googleTokenURI, sa.TokenURI)
}

func TestClientOption(t *testing.T) {
	t.Run("service account json", func(t *testing.T) {
		opt, projectID, err := ClientOption(config.FirebaseConfig{
			ServiceAccountJSON: `{"project_id":"p1","client_email":"a@b","private_key":"k"}`,
		})
		require.NoError(t, err)
		assert.NotNil(t, opt)
		assert.Equal(t, "p1", projectID)
	})

	t.Run("triple", func(t *testing.T) {
		opt, projectID, err := ClientOption(config.FirebaseConfig{ProjectID: "p2", ClientEmail: "a@b", PrivateKey: "k"})
		require.NoError(t, err)
		assert.NotNil(t, opt)
		assert.Equal(t, "p2", projectID)
	})

	t.Run("file", func(t *testing.T) {
		opt, _, err := ClientOption(config.FirebaseConfig{CredentialsPath: "/etc/fcm.json"})
		require.NoError(t, err)
		assert.NotNil(t, opt)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, _, err := ClientOption(config.FirebaseConfig{ServiceAccountJSON: "{"})
		var cfgErr *models.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("json without key", func(t *testing.T) {
		_, _, err := ClientOption(config.FirebaseConfig{ServiceAccountJSON: `{"project_id":"p"}`})
		var cfgErr *models.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("nothing", func(t *testing.T) {
		_, _, err := ClientOption(config.FirebaseConfig{})
		var cfgErr *models.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})
}

func TestProvider_InitRunsOnceAndMemoisesError(t *testing.T) {
	p := NewProvider(config.FirebaseConfig{}, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Init(context.Background())
		}(i)
	}
	wg.Wait()

	require.Error(t, errs[0])
	for _, err := range errs {
		assert.Same(t, errs[0], err)
	}

	_, err := p.Messaging(context.Background())
	assert.Same(t, errs[0], err)
	_, err = p.Auth(context.Background())
	assert.Same(t, errs[0], err)
}
