// Package firebaseapp owns the process-wide Firebase Admin handles. They are created at
// most once and are read-only afterwards.
package firebaseapp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"notification-dispatch/internal/config"
	"notification-dispatch/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const googleTokenURI = "https://oauth2.googleapis.com/token"

// Provider lazily builds the Firebase app and its clients behind a single sync.Once.
// Concurrent first callers block until initialisation finishes and observe the same result.
type Provider struct {
	cfg    config.FirebaseConfig
	logger *zap.Logger

	once      sync.Once
	app       *firebase.App
	messaging *messaging.Client
	auth      *auth.Client
	err       error
}

func NewProvider(cfg config.FirebaseConfig, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger.Named("firebase"),
	}
}

// Init performs the one-time initialisation. Errors are memoised: a failed init is not retried.
func (p *Provider) Init(ctx context.Context) error {
	p.once.Do(func() {
		p.err = p.init(ctx)
	})
	return p.err
}

func (p *Provider) init(ctx context.Context) error {
	opt, projectID, err := ClientOption(p.cfg)
	if err != nil {
		return err
	}

	var appCfg *firebase.Config
	if projectID != "" {
		appCfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opt)
	if err != nil {
		return fmt.Errorf("initialising firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("creating firebase messaging client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("creating firebase auth client: %w", err)
	}

	p.app = app
	p.messaging = messagingClient
	p.auth = authClient
	p.logger.Info("Firebase app initialised", zap.String("project_id", projectID))
	return nil
}

// Messaging returns the shared FCM client, initialising on first use.
func (p *Provider) Messaging(ctx context.Context) (*messaging.Client, error) {
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	return p.messaging, nil
}

// Auth returns the shared Firebase Auth client, initialising on first use.
func (p *Provider) Auth(ctx context.Context) (*auth.Client, error) {
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	return p.auth, nil
}

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ClientOption turns the configured credentials into a google client option.
// Precedence: full service-account JSON, then the project/email/key triple, then a key file.
func ClientOption(cfg config.FirebaseConfig) (option.ClientOption, string, error) {
	switch {
	case cfg.ServiceAccountJSON != "":
		var sa serviceAccount
		if err := json.Unmarshal([]byte(cfg.ServiceAccountJSON), &sa); err != nil {
			return nil, "", &models.ConfigurationError{Key: "FIREBASE_SERVICE_ACCOUNT_JSON", Reason: "invalid JSON: " + err.Error()}
		}
		if sa.PrivateKey == "" || sa.ClientEmail == "" {
			return nil, "", &models.ConfigurationError{Key: "FIREBASE_SERVICE_ACCOUNT_JSON", Reason: "client_email and private_key are required"}
		}
		raw, err := serviceAccountJSON(sa.ProjectID, sa.ClientEmail, config.FirebaseConfig{PrivateKey: sa.PrivateKey}.PrivateKeyPEM(), sa.TokenURI)
		if err != nil {
			return nil, "", err
		}
		return option.WithCredentialsJSON(raw), sa.ProjectID, nil

	case cfg.ProjectID != "" && cfg.ClientEmail != "" && cfg.PrivateKey != "":
		raw, err := serviceAccountJSON(cfg.ProjectID, cfg.ClientEmail, cfg.PrivateKeyPEM(), "")
		if err != nil {
			return nil, "", err
		}
		return option.WithCredentialsJSON(raw), cfg.ProjectID, nil

	case cfg.CredentialsPath != "":
		return option.WithCredentialsFile(cfg.CredentialsPath), cfg.ProjectID, nil
	}
	return nil, "", &models.ConfigurationError{Key: "FIREBASE_SERVICE_ACCOUNT_JSON", Reason: "no firebase credentials configured"}
}

func serviceAccountJSON(projectID, clientEmail, privateKey, tokenURI string) ([]byte, error) {
	if tokenURI == "" {
		tokenURI = googleTokenURI
	}
	raw, err := json.Marshal(serviceAccount{
		Type:        "service_account",
		ProjectID:   projectID,
		ClientEmail: clientEmail,
		PrivateKey:  privateKey,
		TokenURI:    tokenURI,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding service account: %w", err)
	}
	return raw, nil
}
