package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/brueckenwerk/cms/internal/content/memstore"
	"github.com/brueckenwerk/cms/internal/media"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/brueckenwerk/cms/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	backend, docs := memstore.New()
	objects := storage.NewMemoryStore()
	require.NoError(t, objects.Put(ctx, "used.webp", []byte("12"), "image/webp"))
	require.NoError(t, objects.Put(ctx, "old/unused.pdf", []byte("12345"), "application/pdf"))
	require.NoError(t, objects.Put(ctx, "old/", nil, ""))
	require.NoError(t, backend.Projects.Insert(ctx, models.Project{ID: "p1", Name: "Bridges", Logo: "/api/media/used.webp"}))
	require.NoError(t, backend.TeamMembers.Insert(ctx, models.TeamMember{ID: "t1", Name: "Jane", Picture: "team/gone.webp"}))

	rep, err := Run(ctx, media.NewService(objects, docs, media.Resolver{}))
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Checked)
	require.Len(t, rep.Orphans, 1)
	assert.Equal(t, "old/unused.pdf", rep.Orphans[0].Key)
	assert.Equal(t, int64(5), rep.OrphanSize)
	require.Len(t, rep.Missing, 1)
	assert.Equal(t, "team/gone.webp", rep.Missing[0].Key)
	assert.Equal(t, "Jane", rep.Missing[0].UsedBy[0].Name)
}

type fakeCloudWatch struct {
	in  *cloudwatch.PutMetricDataInput
	err error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.in = in
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestPublishMetrics(t *testing.T) {
	rep := Report{
		Orphans:    []media.File{{Key: "a.pdf", Size: 3}, {Key: "b.pdf", Size: 4}},
		OrphanSize: 7,
		Missing:    []Missing{{Key: "gone.webp"}},
		ScannedAt:  time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC),
	}
	cw := &fakeCloudWatch{}
	require.NoError(t, PublishMetrics(context.Background(), cw, "Website/MediaAudit", "site-media", rep))

	require.NotNil(t, cw.in)
	assert.Equal(t, "Website/MediaAudit", aws.ToString(cw.in.Namespace))
	got := map[string]float64{}
	for _, d := range cw.in.MetricData {
		got[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
		require.Len(t, d.Dimensions, 1)
		assert.Equal(t, "site-media", aws.ToString(d.Dimensions[0].Value))
		assert.Equal(t, rep.ScannedAt, *d.Timestamp)
	}
	assert.Equal(t, map[string]float64{"OrphanCount": 2, "OrphanBytes": 7, "MissingCount": 1}, got)

	cw.err = errors.New("throttled")
	assert.ErrorContains(t, PublishMetrics(context.Background(), cw, "ns", "b", rep), "put metric data")
}
