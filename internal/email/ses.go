// Package email sends transactional mail through AWS SES.
package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// Config holds SES connection settings.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
}

// SESSender sends mail via the SES v2 API.
type SESSender struct {
	client *sesv2.Client
	from   string
	log    *zap.Logger
}

// NewSESSender builds a sender from static credentials. When no access
// key is configured it falls back to the default AWS credential chain.
func NewSESSender(ctx context.Context, cfg Config, log *zap.Logger) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.From,
		log:    log,
	}, nil
}

// SendReservationConfirmation emails the signed confirmation link for a
// reservation. Parameters are plain strings so callers stay decoupled
// from this package.
func (s *SESSender) SendReservationConfirmation(ctx context.Context, to, terrainName, date, start, confirmURL string) error {
	subject := "Confirmez votre réservation - " + terrainName

	htmlBody := fmt.Sprintf(`
		<h2>Votre réservation vous attend</h2>
		<p>Terrain : <strong>%s</strong></p>
		<p>Date : <strong>%s</strong> à <strong>%s</strong></p>
		<p><a href="%s">Cliquez ici pour confirmer votre réservation</a></p>
		<p>Le lien expire dans une heure.</p>
	`, terrainName, date, start, confirmURL)

	textBody := fmt.Sprintf(
		"Votre réservation : %s le %s à %s.\nConfirmez ici : %s\nLe lien expire dans une heure.",
		terrainName, date, start, confirmURL,
	)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	s.log.Debug("confirmation email dispatched", zap.String("to", to))
	return nil
}
