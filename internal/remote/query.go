package remote

import (
	"net/url"
	"strconv"
	"strings"
)

// Query holds the list parameters understood by the record store.
type Query struct {
	// Where filters on field equality.
	Where map[string]string
	// Search is a full-text query (q).
	Search string
	Sort   string
	Desc   bool
	// Page is 1-based; zero disables server-side paging.
	Page  int
	Limit int
}

func (q Query) Values() url.Values {
	v := url.Values{}
	for k, val := range q.Where {
		v.Set(k, val)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != "" {
		v.Set("_sort", q.Sort)
		if q.Desc {
			v.Set("_order", "desc")
		} else {
			v.Set("_order", "asc")
		}
	}
	if q.Page > 0 {
		v.Set("_page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("_limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Eq returns a query filtering on one field.
func Eq(field, value string) Query {
	return Query{Where: map[string]string{field: value}}
}

// ParseQuery is the inverse of Values. Unknown underscore parameters are
// ignored; every other parameter becomes an equality filter.
func ParseQuery(v url.Values) Query {
	var q Query
	for k, vals := range v {
		if len(vals) == 0 {
			continue
		}
		val := vals[0]
		switch k {
		case "q":
			q.Search = val
		case "_sort":
			q.Sort = val
		case "_order":
			q.Desc = strings.EqualFold(val, "desc")
		case "_page":
			q.Page, _ = strconv.Atoi(val)
		case "_limit":
			q.Limit, _ = strconv.Atoi(val)
		default:
			if strings.HasPrefix(k, "_") {
				continue
			}
			if q.Where == nil {
				q.Where = make(map[string]string)
			}
			q.Where[k] = val
		}
	}
	return q
}
