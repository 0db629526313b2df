package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/locale"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type projectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url,omitempty"`
	Website     string `json:"website,omitempty"`
}

type teamMemberView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Bio        string `json:"bio"`
	PictureURL string `json:"picture_url,omitempty"`
}

type hostView struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type courseView struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Hosts            []hostView `json:"hosts"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
}

type postView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Excerpt      string     `json:"excerpt"`
	Body         string     `json:"body,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// PublicProjects handles GET /api/public/projects.
func (h *Handler) PublicProjects(c *gin.Context) {
	projects, err := h.docs.Projects.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Order < projects[j].Order })

	lang, url := locale.From(c), h.media.Resolver().URL
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectView{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description.Get(lang),
			LogoURL:     url(p.Logo),
			Website:     p.Website,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PublicTeam handles GET /api/public/team.
func (h *Handler) PublicTeam(c *gin.Context) {
	members, err := h.docs.TeamMembers.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })

	lang, url := locale.From(c), h.media.Resolver().URL
	out := make([]teamMemberView, 0, len(members))
	for _, m := range members {
		out = append(out, teamMemberView{
			ID:         m.ID,
			Name:       m.Name,
			Role:       m.Role.Get(lang),
			Bio:        m.Bio.Get(lang),
			PictureURL: url(m.Picture),
		})
	}
	c.JSON(http.StatusOK, out)
}

// PublicCourses handles GET /api/public/courses. Courses without a start
// date come last.
func (h *Handler) PublicCourses(c *gin.Context) {
	courses, err := h.docs.Courses.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	sort.SliceStable(courses, func(i, j int) bool {
		a, b := courses[i].StartsAt, courses[j].StartsAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.Before(*b)
	})

	lang, url := locale.From(c), h.media.Resolver().URL
	out := make([]courseView, 0, len(courses))
	for _, co := range courses {
		hosts := make([]hostView, 0, len(co.Hosts))
		for _, host := range co.Hosts {
			hosts = append(hosts, hostView{Name: host.Name, ImageURL: url(host.Image)})
		}
		out = append(out, courseView{
			ID:               co.ID,
			Title:            co.Title.Get(lang),
			Slug:             co.Slug,
			Description:      co.Description.Get(lang),
			FeaturedImageURL: url(co.FeaturedImage),
			Hosts:            hosts,
			StartsAt:         co.StartsAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) postView(p models.BlogPost, lang string, withBody bool) postView {
	v := postView{
		ID:           p.ID,
		Title:        p.Title.Get(lang),
		Slug:         p.Slug,
		Excerpt:      p.Excerpt.Get(lang),
		ThumbnailURL: h.media.Resolver().URL(p.Thumbnail),
		PublishedAt:  p.PublishedAt,
	}
	if withBody {
		v.Body = p.Body.Get(lang)
	}
	return v
}

func (h *Handler) publishedPosts(c *gin.Context) ([]models.BlogPost, error) {
	posts, err := h.docs.BlogPosts.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	published := posts[:0]
	for _, p := range posts {
		if p.Published {
			published = append(published, p)
		}
	}
	sort.SliceStable(published, func(i, j int) bool {
		a, b := published[i].PublishedAt, published[j].PublishedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return published, nil
}

// PublicPosts handles GET /api/public/posts, newest first.
func (h *Handler) PublicPosts(c *gin.Context) {
	posts, err := h.publishedPosts(c)
	if err != nil {
		writeError(c, err)
		return
	}
	lang := locale.From(c)
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, h.postView(p, lang, false))
	}
	c.JSON(http.StatusOK, out)
}

// PublicPost handles GET /api/public/posts/:slug. Signed-in users who can
// edit content also get unpublished drafts, for previewing.
func (h *Handler) PublicPost(c *gin.Context) {
	posts, err := h.docs.BlogPosts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	preview := access.Can(access.Role(c), access.ContentWrite)
	slug := c.Param("slug")
	for _, p := range posts {
		if p.Slug != slug || !(p.Published || preview) {
			continue
		}
		if !p.Published {
			c.Header("Cache-Control", "private, no-store")
			log.Debug().Str("slug", slug).Str("by", access.Email(c)).Msg("Draft preview")
		}
		c.JSON(http.StatusOK, h.postView(p, locale.From(c), true))
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
}
