package storage

import (
	"bytes"
	"context"

	"sinta-collector/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client erstellt einen S3-Client für das Snapshot-Bucket.
func NewS3Client(cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.SnapshotS3URL,
				SigningRegion:     cfg.SnapshotS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.SnapshotS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.SnapshotS3Key, cfg.SnapshotS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// SnapshotStore schreibt Roh-HTML-Schnappschüsse von Listing-Seiten ins
// S3. Nur für Layout-Drift-Forensik, nie auf dem heißen Pfad erzwungen.
type SnapshotStore struct {
	Client *s3.Client
	Bucket string
	Config *config.Config
}

// NewSnapshotStore erstellt einen Snapshot-Store über dem S3-Client.
func NewSnapshotStore(client *s3.Client, cfg *config.Config) *SnapshotStore {
	return &SnapshotStore{Client: client, Bucket: cfg.SnapshotS3Bucket, Config: cfg}
}

// Snapshot lädt den rohen Seiteninhalt unter dem gegebenen Schlüssel hoch.
func (s *SnapshotStore) Snapshot(ctx context.Context, key string, body []byte) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.Bucket,
		Key:    &key,
		Body:   bytes.NewReader(body),
	})
	return err
}
