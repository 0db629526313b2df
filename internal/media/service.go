package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/metrics"
	"github.com/brueckenwerk/cms/internal/optimize"
	"github.com/brueckenwerk/cms/internal/storage"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// File is a stored object as shown in the media library.
type File struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Category     string    `json:"category"`
	NoIndex      bool      `json:"noindex"`
	URL          string    `json:"url"`
	UsedBy       []Usage   `json:"used_by"`
}

// Upload is a file received from the dashboard.
type Upload struct {
	Filename    string
	ContentType string
	// Folder is an optional key prefix such as "team".
	Folder string
	Data   []byte
}

// Download is an opened object for the serving route.
type Download struct {
	Body    io.ReadCloser
	Object  storage.Object
	NoIndex bool
}

// Service runs the media library against one bucket and one content store.
type Service struct {
	objects  storage.ObjectStore
	docs     *content.Store
	resolver Resolver
}

func NewService(objects storage.ObjectStore, docs *content.Store, resolver Resolver) *Service {
	return &Service{objects: objects, docs: docs, resolver: resolver}
}

// Resolver returns the reference resolver the service was built with.
func (s *Service) Resolver() Resolver { return s.resolver }

// Usage rebuilds the usage index from the current content.
func (s *Service) Usage(ctx context.Context) (UsageIndex, error) {
	return BuildUsageIndex(ctx, s.docs, s.resolver.Normalize)
}

// Files lists every stored file except folder placeholders, sorted by key.
func (s *Service) Files(ctx context.Context) ([]File, error) {
	var (
		objects []storage.Object
		noindex = map[string]bool{}
		usage   UsageIndex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		objects, err = s.objects.List(gctx)
		return storageError(err)
	})
	g.Go(func() error {
		meta, err := s.docs.Media.List(gctx)
		if err != nil {
			return fmt.Errorf("list media metadata: %w", err)
		}
		for _, m := range meta {
			noindex[m.Key] = m.NoIndex
		}
		return nil
	})
	g.Go(func() error {
		var err error
		usage, err = s.Usage(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]File, 0, len(objects))
	for _, o := range objects {
		if storage.IsDirectoryPlaceholder(o.Key) {
			continue
		}
		files = append(files, s.describe(o, noindex[o.Key], usage[o.Key]))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}

// File describes a single stored file.
func (s *Service) File(ctx context.Context, ref string) (File, error) {
	key := s.resolver.Normalize(ref)
	if key == "" {
		return File{}, ErrInvalidKey
	}
	obj, err := s.objects.Stat(ctx, key)
	if err != nil {
		return File{}, storageError(err)
	}
	noindex, err := s.noIndex(ctx, key)
	if err != nil {
		return File{}, err
	}
	usage, err := s.Usage(ctx)
	if err != nil {
		return File{}, err
	}
	return s.describe(obj, noindex, usage[key]), nil
}

func (s *Service) describe(o storage.Object, noindex bool, usedBy []Usage) File {
	if usedBy == nil {
		usedBy = []Usage{}
	}
	return File{
		Key:          o.Key,
		Size:         o.Size,
		LastModified: o.LastModified,
		Category:     Category(o.Key),
		NoIndex:      noindex,
		URL:          s.resolver.URL(o.Key),
		UsedBy:       usedBy,
	}
}

func (s *Service) noIndex(ctx context.Context, key string) (bool, error) {
	meta, err := s.docs.Media.Get(ctx, key)
	if errors.Is(err, content.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get media metadata: %w", err)
	}
	return meta.NoIndex, nil
}

// Delete removes a file and its metadata unless a record still uses it.
//
// The usage check and the delete are not atomic: a record saved in between
// can end up referencing a deleted file.
func (s *Service) Delete(ctx context.Context, ref string) error {
	key := s.resolver.Normalize(ref)
	if key == "" {
		return ErrInvalidKey
	}

	usage, err := s.Usage(ctx)
	if err != nil {
		metrics.Deletes.WithLabelValues("error").Inc()
		return err
	}
	if used := usage[key]; len(used) > 0 {
		metrics.Deletes.WithLabelValues("in_use").Inc()
		return &InUseError{Key: key, UsedBy: used}
	}

	if _, err := s.objects.Stat(ctx, key); err != nil {
		err = storageError(err)
		if errors.Is(err, ErrNotFound) {
			metrics.Deletes.WithLabelValues("not_found").Inc()
		} else {
			metrics.Deletes.WithLabelValues("error").Inc()
		}
		return err
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		metrics.Deletes.WithLabelValues("error").Inc()
		return storageError(err)
	}
	if err := s.docs.Media.Delete(ctx, key); err != nil && !errors.Is(err, content.ErrNotFound) {
		metrics.Deletes.WithLabelValues("error").Inc()
		return fmt.Errorf("delete media metadata: %w", err)
	}

	metrics.Deletes.WithLabelValues("deleted").Inc()
	log.Info().Str("key", key).Msg("Media file deleted")
	return nil
}

// Upload stores a file under a sanitized key derived from its name.
// Raster images are converted to width-capped WebP first. Uploading to an
// existing key replaces the object and keeps its noindex flag.
func (s *Service) Upload(ctx context.Context, up Upload) (File, error) {
	if len(up.Data) == 0 {
		return File{}, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}

	data, contentType, ext := up.Data, up.ContentType, strings.ToLower(path.Ext(up.Filename))
	if optimize.IsOptimizable(contentType) {
		res, err := optimize.Image(data)
		if err != nil {
			return File{}, fmt.Errorf("%w: %s: %w", ErrInvalidUpload, up.Filename, err)
		}
		data, contentType, ext = res.Data, res.ContentType, optimize.Extension
		log.Debug().Str("file", up.Filename).Int("width", res.Width).Int("height", res.Height).Msg("Image optimized")
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := BuildKey(up.Folder, up.Filename, ext)
	if NormalizeKey(key) != key {
		return File{}, fmt.Errorf("%w: folder %q collides with the serving path", ErrInvalidUpload, up.Folder)
	}
	if err := s.objects.Put(ctx, key, data, contentType); err != nil {
		return File{}, storageError(err)
	}
	if err := s.docs.Media.Upsert(ctx, key); err != nil {
		return File{}, fmt.Errorf("upsert media metadata: %w", err)
	}
	metrics.Uploads.WithLabelValues(Category(key)).Inc()
	log.Info().Str("key", key).Str("content_type", contentType).Int("bytes", len(data)).Msg("Media file uploaded")

	f, err := s.File(ctx, key)
	if err != nil {
		// The upload itself succeeded; report what was stored.
		log.Warn().Err(err).Str("key", key).Msg("Uploaded file could not be described")
		noindex, _ := s.noIndex(ctx, key)
		obj := storage.Object{Key: key, Size: int64(len(data)), ContentType: contentType, LastModified: time.Now().UTC()}
		return s.describe(obj, noindex, nil), nil
	}
	return f, nil
}

// BuildKey returns "[folder/]slug(stem)ext". Folder segments are slugged
// one by one; an unusable stem becomes "file".
func BuildKey(folder, filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	name := slug.MakeLang(stem, "de")
	if name == "" {
		name = "file"
	}

	var parts []string
	for _, seg := range strings.Split(folder, "/") {
		if s := slug.MakeLang(seg, "de"); s != "" {
			parts = append(parts, s)
		}
	}
	return path.Join(append(parts, name+strings.ToLower(ext))...)
}

// SetNoIndex flags a stored file as excluded from search indexing.
func (s *Service) SetNoIndex(ctx context.Context, ref string, noindex bool) error {
	key := s.resolver.Normalize(ref)
	if key == "" {
		return ErrInvalidKey
	}
	if _, err := s.objects.Stat(ctx, key); err != nil {
		return storageError(err)
	}
	if err := s.docs.Media.SetNoIndex(ctx, key, noindex); err != nil {
		return fmt.Errorf("set noindex: %w", err)
	}
	return nil
}

// Open streams a stored file. The caller closes Body.
func (s *Service) Open(ctx context.Context, ref string) (*Download, error) {
	key := s.resolver.Normalize(ref)
	if key == "" {
		return nil, ErrInvalidKey
	}
	body, obj, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, storageError(err)
	}
	noindex, err := s.noIndex(ctx, key)
	if err != nil {
		body.Close()
		return nil, err
	}
	return &Download{Body: body, Object: obj, NoIndex: noindex}, nil
}
