// Package catalog provides the food catalog sources the server can start
// from, and the loader that turns a source into a ready catalog.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/alchemorsel/nutriplan/internal/domain/food"
	"github.com/alchemorsel/nutriplan/internal/infrastructure/config"
	"github.com/alchemorsel/nutriplan/internal/ports/outbound"
)

var (
	_ outbound.CatalogSource = EmbeddedSource{}
	_ outbound.CatalogSource = (*FileSource)(nil)
	_ outbound.CatalogSource = (*S3Source)(nil)
	_ outbound.CatalogSource = (*DatabaseSource)(nil)
)

// EmbeddedSource serves the catalog compiled into the binary
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return config.CatalogEmbedded }

func (EmbeddedSource) Load(ctx context.Context) (*food.Catalog, error) {
	return food.DefaultCatalog()
}

// FileSource reads a catalog document from disk
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return config.CatalogFile }

func (s *FileSource) Load(ctx context.Context) (*food.Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	return food.ReadJSON(f)
}

// ObjectGetter is the slice of the S3 API the catalog needs
type ObjectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// S3Source reads a catalog document from an S3 bucket
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Source creates an S3 client for cfg. A custom endpoint switches to
// path-style addressing for S3 compatible stores.
func NewS3Source(cfg config.S3Config) (*S3Source, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3SourceWithClient(s3.New(sess), cfg.Bucket, cfg.Key), nil
}

// NewS3SourceWithClient uses an existing client
func NewS3SourceWithClient(client ObjectGetter, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return config.CatalogS3 }

func (s *S3Source) Load(ctx context.Context) (*food.Catalog, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	return food.ReadJSON(out.Body)
}

// DatabaseSource reads the catalog from a food repository. When the store is
// empty and Seed is set, Seed is written first.
type DatabaseSource struct {
	repo outbound.FoodRepository
	seed *food.Catalog
}

// NewDatabaseSource creates a repository backed source
func NewDatabaseSource(repo outbound.FoodRepository, seed *food.Catalog) *DatabaseSource {
	return &DatabaseSource{repo: repo, seed: seed}
}

func (s *DatabaseSource) Name() string { return config.CatalogDatabase }

func (s *DatabaseSource) Load(ctx context.Context) (*food.Catalog, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog version: %w", err)
	}

	if version == "" {
		if s.seed == nil {
			return nil, food.ErrEmptyCatalog
		}
		if err := s.repo.ReplaceAll(ctx, s.seed.Version(), s.seed.All()); err != nil {
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		return s.seed, nil
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return food.NewCatalog(version, records)
}
