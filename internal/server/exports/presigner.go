// Package exports issues presigned S3 upload URLs for CSV exports.
package exports

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/statusboard/internal/common"
	sc "github.com/dmitrijs2005/statusboard/internal/server/config"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// Presigner builds its S3 client lazily on first use and reuses it.
type Presigner struct {
	config *sc.Config
	now    timex.Clock

	once   sync.Once
	client *s3.PresignClient
	err    error
}

func NewPresigner(cfg *sc.Config, now timex.Clock) *Presigner {
	return &Presigner{config: cfg, now: now.Or()}
}

func (p *Presigner) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	p.once.Do(func() {
		cfg, err := loadDefaultAWSConfig(ctx,
			config.WithRegion(p.config.S3Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				p.config.S3RootUser,
				p.config.S3RootPassword,
				"",
			)))
		if err != nil {
			p.err = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(p.config.S3BaseEndpoint)
			o.UsePathStyle = true
		})
		p.client = s3.NewPresignClient(client)
	})
	return p.client, p.err
}

// StorageKey places an export under a per-day prefix with a random
// component, keeping the client-supplied base name for readability.
func StorageKey(now time.Time, name string) (string, error) {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("export name %q: %w", name, common.ErrInvalidArgument)
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	return fmt.Sprintf("exports/%s/%s-%s", now.UTC().Format("2006/01/02"), uuid.NewString(), clean), nil
}

// PresignExport returns a PUT URL valid for PresignValidityDuration and the
// object key it writes to.
func (p *Presigner) PresignExport(ctx context.Context, name string) (string, string, error) {
	key, err := StorageKey(p.now(), name)
	if err != nil {
		return "", "", err
	}

	pc, err := p.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := p.config.S3Bucket
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String("text/csv"),
	}, s3.WithPresignExpires(p.config.PresignValidityDuration))
	if err != nil {
		return "", "", fmt.Errorf("presign %s: %w", key, err)
	}

	return req.URL, key, nil
}
