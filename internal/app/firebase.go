package app

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"haul/internal/config"
)

// NewFirebaseApp initializes the Firebase Admin SDK. Without a credentials
// file the SDK falls back to application default credentials.
func NewFirebaseApp(ctx context.Context, cfg config.AuthConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}
	return fbApp, nil
}
