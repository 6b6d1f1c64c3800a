// Package s3storage reaches the audio bucket through the AWS SDK. Credentials
// come from a Cognito identity pool, or from static keys when talking to a
// local S3-compatible server.
package s3storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lorrc/voice2ticket/internal/core/domain"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// Config holds the bucket and credential settings.
type Config struct {
	Region          string
	Bucket          string
	IdentityPoolID  string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	Logger          *slog.Logger
}

// identityAPI is the subset of the Cognito client used to mint credentials.
type identityAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// Connector implements ports.StorageConnector.
type Connector struct {
	cfg         Config
	credentials aws.CredentialsProvider
	logger      *slog.Logger
}

var _ ports.StorageConnector = (*Connector)(nil)

// NewConnector builds a connector. Static keys win over the identity pool.
func NewConnector(ctx context.Context, cfg Config) (*Connector, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "s3_storage", "bucket", cfg.Bucket)

	if cfg.AccessKeyID != "" {
		return &Connector{
			cfg:         cfg,
			credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			logger:      logger,
		}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("s3storage: loading aws config: %w", err)
	}
	return newPoolConnector(cfg, cognitoidentity.NewFromConfig(awsCfg), logger), nil
}

func newPoolConnector(cfg Config, identity identityAPI, logger *slog.Logger) *Connector {
	return &Connector{
		cfg: cfg,
		credentials: aws.NewCredentialsCache(&identityPoolProvider{
			poolID:   cfg.IdentityPoolID,
			identity: identity,
		}),
		logger: logger,
	}
}

// Connect acquires credentials and returns a store bound to them. A pool ID
// that cannot be real is rejected before any network call.
func (c *Connector) Connect(ctx context.Context) (ports.ObjectStore, error) {
	if c.cfg.AccessKeyID == "" && !validPoolID(c.cfg.IdentityPoolID) {
		return nil, &apperrors.AppError{
			Err:     apperrors.ErrStorageCredentials,
			Message: domain.MsgInvalidPoolID,
			Code:    "STORAGE_CREDENTIALS",
		}
	}

	if _, err := c.credentials.Retrieve(ctx); err != nil {
		c.logger.WarnContext(ctx, "storage credentials unavailable", "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageCredentials, err)
	}

	client := s3.New(s3.Options{
		Region:       c.cfg.Region,
		Credentials:  c.credentials,
		UsePathStyle: c.cfg.UsePathStyle,
		BaseEndpoint: optionalString(c.cfg.Endpoint),
	})
	return &Store{client: client, bucket: c.cfg.Bucket, logger: c.logger}, nil
}

func validPoolID(id string) bool {
	return id != "" && strings.Contains(id, "-")
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

// identityPoolProvider exchanges an unauthenticated Cognito identity for
// temporary AWS credentials.
type identityPoolProvider struct {
	poolID   string
	identity identityAPI
}

func (p *identityPoolProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	id, err := p.identity.GetId(ctx, &cognitoidentity.GetIdInput{
		IdentityPoolId: aws.String(p.poolID),
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("get identity: %w", err)
	}

	out, err := p.identity.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: id.IdentityId,
	})
	if err != nil {
		return aws.Credentials{}, fmt.Errorf("get credentials: %w", err)
	}
	if out.Credentials == nil {
		return aws.Credentials{}, fmt.Errorf("get credentials: empty response")
	}

	creds := aws.Credentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		Source:          "CognitoIdentityPool",
	}
	if out.Credentials.Expiration != nil {
		creds.CanExpire = true
		creds.Expires = *out.Credentials.Expiration
	}
	return creds, nil
}
