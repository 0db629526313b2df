package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// Document is a record stored in one of the content collections.
type Document interface {
	DocID() string
}

// MediaField is one populated or empty media reference on a record.
type MediaField struct {
	Field string
	Value string
}

// MediaReferrer is a record that can point at stored files.
type MediaReferrer interface {
	Document
	Kind() string
	DisplayName() string
	MediaFields() []MediaField
}

// MediaNormalizer rewrites every media reference field of a record in place.
type MediaNormalizer interface {
	NormalizeMedia(normalize func(string) string)
}

// Kinds reported in usage records.
const (
	KindProject    = "project"
	KindTeamMember = "teamMember"
	KindCourse     = "course"
	KindBlogPost   = "blogPost"
)

// Timestamps is embedded by every content record.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}

// Stamps gives generic code access to the embedded timestamps.
func (t *Timestamps) Stamps() *Timestamps { return t }

// Touch sets UpdatedAt to now and CreatedAt too when unset.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Project is a partner or initiative shown on the projects page.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name" binding:"required"`
	Slug        string    `json:"slug" bson:"slug"`
	Description Localized `json:"description" bson:"description"`
	Logo        string    `json:"logo,omitempty" bson:"logo,omitempty"`
	Website     string    `json:"website,omitempty" bson:"website,omitempty"`
	Order       int       `json:"order" bson:"order"`
	Timestamps  `bson:",inline"`
}

func (p Project) DocID() string       { return p.ID }
func (p Project) Kind() string        { return KindProject }
func (p Project) DisplayName() string { return p.Name }

func (p Project) MediaFields() []MediaField {
	return []MediaField{{Field: "logo", Value: p.Logo}}
}

func (p *Project) NormalizeMedia(normalize func(string) string) {
	p.Logo = normalize(p.Logo)
}

func (p *Project) SetID(id string) { p.ID = id }

func (p *Project) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
}

// TeamMember is a person on the team page.
type TeamMember struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name" binding:"required"`
	Role       Localized `json:"role" bson:"role"`
	Bio        Localized `json:"bio" bson:"bio"`
	Picture    string    `json:"picture,omitempty" bson:"picture,omitempty"`
	Order      int       `json:"order" bson:"order"`
	Timestamps `bson:",inline"`
}

func (m TeamMember) DocID() string       { return m.ID }
func (m TeamMember) Kind() string        { return KindTeamMember }
func (m TeamMember) DisplayName() string { return m.Name }

func (m TeamMember) MediaFields() []MediaField {
	return []MediaField{{Field: "picture", Value: m.Picture}}
}

func (m *TeamMember) NormalizeMedia(normalize func(string) string) {
	m.Picture = normalize(m.Picture)
}

func (m *TeamMember) SetID(id string) { m.ID = id }

// CourseHost is a person leading a course.
type CourseHost struct {
	Name  string `json:"name" bson:"name"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}

// Course is an offering on the courses page.
type Course struct {
	ID            string       `json:"id" bson:"_id"`
	Title         Localized    `json:"title" bson:"title" binding:"required"`
	Slug          string       `json:"slug" bson:"slug"`
	Description   Localized    `json:"description" bson:"description"`
	FeaturedImage string       `json:"featured_image,omitempty" bson:"featuredImage,omitempty"`
	Hosts         []CourseHost `json:"hosts" bson:"hosts"`
	StartsAt      *time.Time   `json:"starts_at,omitempty" bson:"startsAt,omitempty"`
	Timestamps    `bson:",inline"`
}

func (c Course) DocID() string       { return c.ID }
func (c Course) Kind() string        { return KindCourse }
func (c Course) DisplayName() string { return c.Title.Get(Languages[0]) }

func (c Course) MediaFields() []MediaField {
	fields := make([]MediaField, 0, 1+len(c.Hosts))
	fields = append(fields, MediaField{Field: "featuredImage", Value: c.FeaturedImage})
	for i, h := range c.Hosts {
		fields = append(fields, MediaField{Field: fmt.Sprintf("hosts[%d].image", i), Value: h.Image})
	}
	return fields
}

func (c *Course) NormalizeMedia(normalize func(string) string) {
	c.FeaturedImage = normalize(c.FeaturedImage)
	for i := range c.Hosts {
		c.Hosts[i].Image = normalize(c.Hosts[i].Image)
	}
}

func (c *Course) SetID(id string) { c.ID = id }

func (c *Course) EnsureSlug() {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Title.Get(Languages[0]))
	}
}

// BlogPost is an article. Only published posts are visible publicly.
type BlogPost struct {
	ID          string     `json:"id" bson:"_id"`
	Title       Localized  `json:"title" bson:"title" binding:"required"`
	Slug        string     `json:"slug" bson:"slug"`
	Excerpt     Localized  `json:"excerpt" bson:"excerpt"`
	Body        Localized  `json:"body" bson:"body"`
	Thumbnail   string     `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Published   bool       `json:"published" bson:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" bson:"publishedAt,omitempty"`
	Timestamps  `bson:",inline"`
}

func (b BlogPost) DocID() string       { return b.ID }
func (b BlogPost) Kind() string        { return KindBlogPost }
func (b BlogPost) DisplayName() string { return b.Title.Get(Languages[0]) }

func (b BlogPost) MediaFields() []MediaField {
	return []MediaField{{Field: "thumbnail", Value: b.Thumbnail}}
}

func (b *BlogPost) NormalizeMedia(normalize func(string) string) {
	b.Thumbnail = normalize(b.Thumbnail)
}

func (b *BlogPost) SetID(id string) { b.ID = id }

func (b *BlogPost) EnsureSlug() {
	if b.Slug == "" {
		b.Slug = slug.Make(b.Title.Get(Languages[0]))
	}
}

// Publish stamps PublishedAt the first time a post goes public.
func (b *BlogPost) Publish(now time.Time) {
	if b.Published && b.PublishedAt == nil {
		b.PublishedAt = &now
	}
}
