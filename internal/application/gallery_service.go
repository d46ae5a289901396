package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/calendar"
	"github.com/example/detailing-backoffice/internal/catalog"
)

const unsplashParams = "?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"

// DefaultGalleryImages is the demonstration gallery stored on first use.
func DefaultGalleryImages() []GalleryImage {
	return []GalleryImage{
		{
			ID:          "1",
			URL:         "https://images.unsplash.com/photo-1558618666-fcd25c85cd64" + unsplashParams,
			Title:       "BMW Serie 3 - Avant traitement",
			Description: "État du véhicule avant notre service de rénovation complète",
			Category:    catalog.CategoryBeforeAfter,
			Service:     "Pro Rénovation",
			UploadDate:  "2024-01-20",
			Tags:        []string{"bmw", "avant", "renovation"},
			Published:   true,
		},
		{
			ID:          "2",
			URL:         "https://images.unsplash.com/photo-1492144534655-ae79c964c9d7" + unsplashParams,
			Title:       "BMW Serie 3 - Après traitement",
			Description: "Résultat après notre service de rénovation Pro",
			Category:    catalog.CategoryBeforeAfter,
			Service:     "Pro Rénovation",
			UploadDate:  "2024-01-20",
			Tags:        []string{"bmw", "après", "renovation", "brillance"},
			Published:   true,
		},
		{
			ID:          "3",
			URL:         "https://images.unsplash.com/photo-1503376780353-7e6692767b70" + unsplashParams,
			Title:       "Application céramique",
			Description: "Application de protection céramique sur carrosserie",
			Category:    catalog.CategoryProtection,
			Service:     "Pro Protection",
			UploadDate:  "2024-01-18",
			Tags:        []string{"ceramique", "protection", "carrosserie"},
			Published:   false,
		},
	}
}

// GalleryService owns the portfolio images.
type GalleryService struct {
	images      RecordStore[GalleryImage]
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGalleryService wires dependencies for gallery operations.
func NewGalleryService(images RecordStore[GalleryImage], idGenerator func() string, now func() time.Time) *GalleryService {
	return NewGalleryServiceWithLogger(images, idGenerator, now, nil)
}

// NewGalleryServiceWithLogger wires dependencies for gallery operations with a logger.
func NewGalleryServiceWithLogger(images RecordStore[GalleryImage], idGenerator func() string, now func() time.Time, logger *slog.Logger) *GalleryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &GalleryService{images: images, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *GalleryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GalleryService", operation, attrs...)
}

// AddImage appends an unpublished image to the gallery.
func (s *GalleryService) AddImage(ctx context.Context, input ImageInput) (image GalleryImage, err error) {
	if s == nil {
		err = fmt.Errorf("GalleryService is nil")
		return
	}

	normalized := normalizeImageInput(input)
	logger := s.loggerWith(ctx, "AddImage", "category", normalized.Category)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "image upload failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("image_id", image.ID).InfoContext(ctx, "image added")
	}()

	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	image = GalleryImage{
		ID:          s.idGenerator(),
		URL:         normalized.URL,
		Title:       normalized.Title,
		Description: normalized.Description,
		Category:    catalog.Category(normalized.Category),
		Service:     galleryService(normalized.Service),
		Tags:        ParseTags(normalized.Tags),
		UploadDate:  calendar.Today(s.now).String(),
		Published:   false,
	}

	_, err = s.images.Update(ctx, func(current []GalleryImage) ([]GalleryImage, error) {
		if indexOf(current, image.ID, imageID) >= 0 {
			return nil, fmt.Errorf("image id %q already exists", image.ID)
		}
		return append(current, image), nil
	})
	if err != nil {
		image = GalleryImage{}
	}
	return
}

// ToggleImagePublication flips the publication flag of an image.
func (s *GalleryService) ToggleImagePublication(ctx context.Context, id string) (image GalleryImage, err error) {
	if s == nil {
		err = fmt.Errorf("GalleryService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ToggleImagePublication", "image_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "image publication toggle failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("published", image.Published).InfoContext(ctx, "image publication toggled")
	}()

	image, err = updateRecord(ctx, s.images, id, imageID, func(_ []GalleryImage, current *GalleryImage) error {
		current.Published = !current.Published
		return nil
	})
	return
}

// UpdateImage replaces the editable fields of an image. The upload date and
// publication flag are preserved.
func (s *GalleryService) UpdateImage(ctx context.Context, params UpdateImageParams) (image GalleryImage, err error) {
	if s == nil {
		err = fmt.Errorf("GalleryService is nil")
		return
	}

	normalized := normalizeImageInput(params.Input)
	logger := s.loggerWith(ctx, "UpdateImage", "image_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "image update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "image updated")
	}()

	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	image, err = updateRecord(ctx, s.images, params.ID, imageID, func(_ []GalleryImage, current *GalleryImage) error {
		current.URL = normalized.URL
		current.Title = normalized.Title
		current.Description = normalized.Description
		current.Category = catalog.Category(normalized.Category)
		current.Service = galleryService(normalized.Service)
		current.Tags = ParseTags(normalized.Tags)
		return nil
	})
	return
}

// DeleteImage removes an image once the deletion has been confirmed.
func (s *GalleryService) DeleteImage(ctx context.Context, params DeleteParams) (err error) {
	if s == nil {
		return fmt.Errorf("GalleryService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteImage", "image_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "image deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "image deleted")
	}()

	return deleteRecord(ctx, s.images, params, imageID)
}

// ListImages returns every image matching filter in gallery order.
func (s *GalleryService) ListImages(ctx context.Context, filter ImageFilter) ([]GalleryImage, error) {
	if s == nil {
		return nil, fmt.Errorf("GalleryService is nil")
	}
	if vErr := validateCategoryFilter(filter.Category); vErr.HasErrors() {
		return nil, vErr
	}

	images, err := s.images.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterImages(images, filter), nil
}

// PublicGallery returns the published images, optionally narrowed to one
// category, with the number of published images per category.
func (s *GalleryService) PublicGallery(ctx context.Context, category string) (PublicGallery, error) {
	if s == nil {
		return PublicGallery{}, fmt.Errorf("GalleryService is nil")
	}
	if vErr := validateCategoryFilter(category); vErr.HasErrors() {
		return PublicGallery{}, vErr
	}

	images, err := s.images.Load(ctx)
	if err != nil {
		return PublicGallery{}, err
	}
	return BuildPublicGallery(images, category), nil
}

// BuildPublicGallery keeps published images only. Counts cover every
// published image regardless of the selected category.
func BuildPublicGallery(images []GalleryImage, category string) PublicGallery {
	gallery := PublicGallery{
		Images: []GalleryImage{},
		Counts: make(map[catalog.Category]int),
	}
	for _, image := range images {
		if !image.Published {
			continue
		}
		gallery.Counts[image.Category]++
		gallery.Total++
		if !isAll(category) && string(image.Category) != strings.TrimSpace(category) {
			continue
		}
		gallery.Images = append(gallery.Images, image)
	}
	return gallery
}

// FilterImages keeps the images whose title, description or tags contain the
// search text and whose category matches.
func FilterImages(images []GalleryImage, filter ImageFilter) []GalleryImage {
	search := strings.TrimSpace(filter.Search)
	category := strings.TrimSpace(filter.Category)

	out := make([]GalleryImage, 0, len(images))
	for _, image := range images {
		if search != "" && !containsFold(search, append([]string{image.Title, image.Description}, image.Tags...)...) {
			continue
		}
		if !isAll(category) && string(image.Category) != category {
			continue
		}
		out = append(out, image)
	}
	return out
}

// ParseTags splits a comma separated tag list, dropping empty entries and
// case-insensitive duplicates.
func ParseTags(raw string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func validateCategoryFilter(category string) *ValidationError {
	vErr := &ValidationError{}
	if !isAll(category) && !catalog.Category(strings.TrimSpace(category)).Valid() {
		vErr.add("category", "category is not a known category")
	}
	return vErr
}

// galleryService stores catalog services by display name, as the upload form does.
func galleryService(value string) string {
	if value == "" {
		return ""
	}
	return catalog.ServiceName(value)
}

func normalizeImageInput(input ImageInput) ImageInput {
	return ImageInput{
		URL:         strings.TrimSpace(input.URL),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Service:     strings.TrimSpace(input.Service),
		Tags:        input.Tags,
	}
}

func imageID(image GalleryImage) string {
	return image.ID
}
