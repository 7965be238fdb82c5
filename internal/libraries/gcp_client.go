package libraries

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Clients struct {
	GCS       *storage.Client
	ProjectID string
}

// NewClients builds the Google Cloud clients from a base64 encoded service
// account JSON.
func NewClients(ctx context.Context, encodedCredentials, projectID string) (*Clients, error) {
	if encodedCredentials == "" {
		return nil, fmt.Errorf("GCP_SERVICE_ACCOUNT_CREDENTIALS not set")
	}

	// decode JSON
	decoded, err := base64.StdEncoding.DecodeString(encodedCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decode service account json: %w", err)
	}

	credOpt := option.WithCredentialsJSON(decoded)

	gcsClient, err := storage.NewClient(ctx, credOpt)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &Clients{
		GCS:       gcsClient,
		ProjectID: projectID,
	}, nil
}

func (c *Clients) Close() {
	c.GCS.Close()
}
