// Package signer turns protected storage references into time-bounded URLs.
package signer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxWindow is the longest validity SigV4 presigning accepts.
const MaxWindow = 7 * 24 * time.Hour

var (
	ErrMalformedReference = errors.New("malformed storage reference")
	ErrExpired            = errors.New("storage reference already expired")
)

// PresignAPI is implemented by *s3.PresignClient.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Signer struct {
	presign PresignAPI
	clock   shortlink.Clock
}

func NewS3Signer(presign PresignAPI, clock shortlink.Clock) *S3Signer {
	if clock == nil {
		clock = shortlink.RealClock{}
	}
	return &S3Signer{presign: presign, clock: clock}
}

// NewS3SignerFromConfig builds the presign client from a loaded AWS config.
func NewS3SignerFromConfig(cfg aws.Config) *S3Signer {
	return NewS3Signer(s3.NewPresignClient(s3.NewFromConfig(cfg)), nil)
}

// Sign presigns a GET for ref valid until expiresAt, capped at MaxWindow.
func (s *S3Signer) Sign(ctx context.Context, ref string, expiresAt int64) (string, error) {
	bucket, key, err := ParseReference(ref)
	if err != nil {
		return "", err
	}

	// compare in seconds; lifetimes past ~292 years overflow a Duration
	secs := expiresAt - s.clock.Now().Unix()
	if secs <= 0 {
		return "", fmt.Errorf("%w: %s", ErrExpired, ref)
	}
	window := MaxWindow
	if secs < int64(MaxWindow/time.Second) {
		window = time.Duration(secs) * time.Second
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(window))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return req.URL, nil
}

// ParseReference splits "s3://bucket/path/to/key" into bucket and key.
func ParseReference(ref string) (bucket, key string, err error) {
	if len(ref) < len(shortlink.ProtectedScheme) ||
		!strings.EqualFold(ref[:len(shortlink.ProtectedScheme)], shortlink.ProtectedScheme) {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	rest := ref[len(shortlink.ProtectedScheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return bucket, key, nil
}
