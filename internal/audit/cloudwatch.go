package audit

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsAPI is the part of *cloudwatch.Client used to publish a report.
type MetricsAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// PublishMetrics writes OrphanCount, OrphanBytes and MissingCount for the
// report under namespace, dimensioned by bucket.
func PublishMetrics(ctx context.Context, cw MetricsAPI, namespace, bucket string, rep Report) error {
	at := rep.ScannedAt
	datum := func(name string, unit cwtypes.StandardUnit, v float64) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Timestamp:  &at,
			Unit:       unit,
			Value:      aws.Float64(v),
			Dimensions: []cwtypes.Dimension{{Name: aws.String("Bucket"), Value: aws.String(bucket)}},
		}
	}
	_, err := cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []cwtypes.MetricDatum{
			datum("OrphanCount", cwtypes.StandardUnitCount, float64(len(rep.Orphans))),
			datum("OrphanBytes", cwtypes.StandardUnitBytes, float64(rep.OrphanSize)),
			datum("MissingCount", cwtypes.StandardUnitCount, float64(len(rep.Missing))),
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
