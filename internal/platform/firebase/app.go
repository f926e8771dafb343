// Package firebase bootstraps the Admin SDK clients the service depends on.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	fbstorage "firebase.google.com/go/v4/storage"
	"google.golang.org/api/option"
)

// Config selects the project and, optionally, explicit credentials.
type Config struct {
	ProjectID                    string
	GoogleApplicationCredentials string
	// StorageBucket is the default Firebase Storage bucket, e.g.
	// "my-project.firebasestorage.app". Empty disables the Storage client.
	StorageBucket string
}

// Clients holds the initialised Admin SDK clients.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Storage   *fbstorage.Client
}

// ErrNoStorageBucket is returned by DefaultBucket when no bucket is configured.
var ErrNoStorageBucket = errors.New("firebase storage bucket not configured")

// InitializeClients creates the Firebase app and its clients.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	ac, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	fc, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}
	clients := &Clients{Auth: ac, Firestore: fc}

	if cfg.StorageBucket != "" {
		sc, err := app.Storage(ctx)
		if err != nil {
			_ = fc.Close()
			return nil, fmt.Errorf("firebase storage: %w", err)
		}
		clients.Storage = sc
	}
	return clients, nil
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials == "" {
		return nil, nil
	}
	creds, err := os.ReadFile(cfg.GoogleApplicationCredentials)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentialsJSON(creds)}, nil
}

// DefaultBucket returns the handle of the configured Storage bucket.
func (c *Clients) DefaultBucket() (*storage.BucketHandle, error) {
	if c == nil || c.Storage == nil {
		return nil, ErrNoStorageBucket
	}
	b, err := c.Storage.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("default bucket: %w", err)
	}
	return b, nil
}

// Close releases the Firestore connection. Auth and Storage hold no
// resources that need closing.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
