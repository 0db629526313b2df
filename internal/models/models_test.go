package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedGet(t *testing.T) {
	l := Localized{"en": "Bridges", "de": "Brücken"}
	assert.Equal(t, "Brücken", l.Get("de"))
	assert.Equal(t, "Bridges", l.Get("fr"))
	assert.Equal(t, "Brücken", Localized{"de": "Brücken", "en": " "}.Get("en"))
	assert.Equal(t, "", Localized{}.Get("en"))
}

func TestCourseMediaFields(t *testing.T) {
	c := Course{FeaturedImage: "cover.webp", Hosts: []CourseHost{{Name: "A", Image: "a.webp"}, {Name: "B"}}}
	assert.Equal(t, []MediaField{
		{Field: "featuredImage", Value: "cover.webp"},
		{Field: "hosts[0].image", Value: "a.webp"},
		{Field: "hosts[1].image", Value: ""},
	}, c.MediaFields())

	c.NormalizeMedia(func(s string) string { return "k/" + s })
	assert.Equal(t, "k/cover.webp", c.FeaturedImage)
	assert.Equal(t, "k/a.webp", c.Hosts[0].Image)
}

func TestEnsureSlugAndPublish(t *testing.T) {
	p := Project{Name: "Bridges of Hope"}
	p.EnsureSlug()
	assert.Equal(t, "bridges-of-hope", p.Slug)

	b := BlogPost{Title: Localized{"de": "Neues Jahr"}, Published: true}
	b.EnsureSlug()
	assert.Equal(t, "neues-jahr", b.Slug)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b.Publish(now)
	b.Publish(now.Add(time.Hour))
	assert.Equal(t, now, *b.PublishedAt)

	var ts Timestamps
	ts.Touch(now)
	ts.Touch(now.Add(time.Minute))
	assert.Equal(t, now, ts.CreatedAt)
	assert.Equal(t, now.Add(time.Minute), ts.UpdatedAt)
}
