package media

import (
	"context"
	"fmt"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/metrics"
	"github.com/brueckenwerk/cms/internal/models"
	"golang.org/x/sync/errgroup"
)

// Usage is one content record field referencing a stored file.
type Usage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Field string `json:"field"`
}

// UsageIndex maps canonical keys to the records referencing them.
type UsageIndex map[string][]Usage

// BuildUsageIndex scans every collection that can reference media, in
// parallel, and indexes each populated reference by its normalized key.
// A failure reading any collection fails the whole build.
func BuildUsageIndex(ctx context.Context, docs *content.Store, normalize func(string) string) (UsageIndex, error) {
	start := time.Now()
	defer func() { metrics.UsageIndexDuration.Observe(time.Since(start).Seconds()) }()

	var (
		projects []models.Project
		team     []models.TeamMember
		courses  []models.Course
		posts    []models.BlogPost
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(listInto(gctx, "projects", docs.Projects, &projects))
	g.Go(listInto(gctx, "team members", docs.TeamMembers, &team))
	g.Go(listInto(gctx, "courses", docs.Courses, &courses))
	g.Go(listInto(gctx, "blog posts", docs.BlogPosts, &posts))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := UsageIndex{}
	addAll(idx, projects, normalize)
	addAll(idx, team, normalize)
	addAll(idx, courses, normalize)
	addAll(idx, posts, normalize)
	return idx, nil
}

func listInto[T models.Document](ctx context.Context, name string, repo content.Repository[T], dst *[]T) func() error {
	return func() error {
		docs, err := repo.List(ctx)
		if err != nil {
			return fmt.Errorf("list %s: %w", name, err)
		}
		*dst = docs
		return nil
	}
}

func addAll[T models.MediaReferrer](idx UsageIndex, records []T, normalize func(string) string) {
	for _, r := range records {
		for _, f := range r.MediaFields() {
			key := normalize(f.Value)
			if key == "" {
				continue
			}
			idx[key] = append(idx[key], Usage{
				Type:  r.Kind(),
				ID:    r.DocID(),
				Name:  r.DisplayName(),
				Field: f.Field,
			})
		}
	}
}
