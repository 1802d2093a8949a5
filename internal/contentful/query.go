package contentful

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// MaxLimit is the largest page size the delivery API accepts
	MaxLimit = 1000
	// MaxInclude is the deepest link resolution level the delivery API accepts
	MaxInclude = 10
)

// Query holds the list parameters the tools use. Zero values are left out of
// the request so the API defaults apply.
type Query struct {
	Limit          int
	Skip           int
	ContentTypeIDs []string
	FullText       string
	Include        int
	Locale         string

	// Params carries any other filter verbatim, for example sys.id
	Params map[string]string
}

// Values encodes the query string. A single content type uses content_type;
// several use the sys.contentType.sys.id[in] filter.
func (q Query) Values() url.Values {
	values := url.Values{}

	if q.Limit > 0 {
		limit := q.Limit
		if limit > MaxLimit {
			limit = MaxLimit
		}
		values.Set("limit", strconv.Itoa(limit))
	}
	if q.Skip > 0 {
		values.Set("skip", strconv.Itoa(q.Skip))
	}

	switch len(q.ContentTypeIDs) {
	case 0:
	case 1:
		values.Set("content_type", q.ContentTypeIDs[0])
	default:
		values.Set("sys.contentType.sys.id[in]", strings.Join(q.ContentTypeIDs, ","))
	}

	if q.FullText != "" {
		values.Set("query", q.FullText)
	}
	if q.Include > 0 {
		include := q.Include
		if include > MaxInclude {
			include = MaxInclude
		}
		values.Set("include", strconv.Itoa(include))
	}
	if q.Locale != "" {
		values.Set("locale", q.Locale)
	}
	for key, value := range q.Params {
		values.Set(key, value)
	}

	return values
}
