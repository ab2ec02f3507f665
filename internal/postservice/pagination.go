package postservice

// DefaultLimit is the page size used when the caller does not ask for one.
// The public listing endpoint overrides it with its own default of nine.
const DefaultLimit = 10

type Metadata struct {
	Page      int `json:"page"`
	Limit     int `json:"limit"`
	Total     int `json:"total"`
	PageCount int `json:"pages"`
}

// normalizePageLimit coerces page and limit to usable values: page defaults
// to the first page, limit to DefaultLimit. Both end up at least 1. No upper
// bound is enforced here; bounding limit is the caller's concern.
func normalizePageLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = DefaultLimit
	}

	return page, limit
}

// paginate computes the page metadata for a result set of total records.
func paginate(page, limit, total int) Metadata {
	page, limit = normalizePageLimit(page, limit)

	return Metadata{
		Page:      page,
		Limit:     limit,
		Total:     total,
		PageCount: (total + limit - 1) / limit,
	}
}

// offsetFor translates a page into the number of records the store query
// must skip.
func offsetFor(page, limit int) int {
	return (page - 1) * limit
}
