package postservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashkeyz/inkwell/internal/common"
)

// maxSlugAttempts bounds the collision loop so a pathological title can
// never spin indefinitely.
const maxSlugAttempts = 100

var (
	ErrEmptySlug     = errors.New("title normalizes to an empty slug")
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

// allocateSlug derives a store-unique slug from the title: the normalized
// base first, then base-1, base-2 and so on until a free candidate turns up.
//
// The existence check and the later insert are separate steps, so two
// concurrent creates with identical titles can both see the same candidate
// as free. The unique index on posts.slug settles that race at insert time;
// the caller retries allocation on ErrDuplicateSlug. Store failures are
// returned as-is and are never retried here: only the slug-taken condition
// drives another iteration.
func (m *PostModel) allocateSlug(ctx context.Context, title string) (string, error) {
	base := common.Slugify(title)
	if base == "" {
		return "", ErrEmptySlug
	}

	slug := base
	for n := 1; n <= maxSlugAttempts; n++ {
		exists, err := m.slugExists(ctx, slug)
		if err != nil {
			return "", err
		}

		if !exists {
			return slug, nil
		}

		slug = fmt.Sprintf("%s-%d", base, n)
	}

	return "", ErrSlugExhausted
}
