package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/brueckenwerk/cms/internal/app"
	"github.com/brueckenwerk/cms/internal/audit"
	"github.com/brueckenwerk/cms/internal/config"
	"github.com/brueckenwerk/cms/internal/logging"
	"github.com/rs/zerolog/log"
)

type event struct{}

func handler(ctx context.Context, _ event) (audit.Report, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return audit.Report{}, err
	}
	logging.Setup(cfg.LogLevel, false)

	deps, err := app.New(ctx, cfg)
	if err != nil {
		return audit.Report{}, err
	}
	defer deps.Close(ctx)

	rep, err := audit.Run(ctx, deps.Media)
	if err != nil {
		return audit.Report{}, err
	}
	log.Info().
		Int("checked", rep.Checked).
		Int("orphans", len(rep.Orphans)).
		Int64("orphan_bytes", rep.OrphanSize).
		Int("missing", len(rep.Missing)).
		Msg("Media audit finished")

	if cfg.MetricsNamespace != "" {
		publish(ctx, cfg, rep)
	}
	return rep, nil
}

// publish failures are logged; the report is still returned.
func publish(ctx context.Context, cfg *config.Config, rep audit.Report) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		log.Error().Err(err).Msg("AWS config for metrics failed")
		return
	}
	if err := audit.PublishMetrics(ctx, cloudwatch.NewFromConfig(awsCfg), cfg.MetricsNamespace, cfg.S3Bucket, rep); err != nil {
		log.Error().Err(err).Msg("PutMetricData failed")
	}
}

func main() {
	lambda.Start(handler)
}
