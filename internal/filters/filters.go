// Package filters translates declarative list-filter query parameters
// (filter[status]=A,C, filter[title]=*term*, sort=-created_at) into
// GORM query scopes. Each filter carries a safe list of columns so
// request input never reaches SQL identifiers.
package filters

import (
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
)

// TicketFilter narrows ticket listings.
type TicketFilter struct{}

func (TicketFilter) Apply(q url.Values, db *gorm.DB) *gorm.DB {
	if v := q.Get("filter[status]"); v != "" {
		db = db.Where("status IN ?", strings.Split(v, ","))
	}
	if v := q.Get("filter[title]"); v != "" {
		db = db.Where("title LIKE ?", likeValue(v))
	}
	if v := q.Get("filter[createdAt]"); v != "" {
		db = dateRange(db, "created_at", v)
	}
	if v := q.Get("filter[updatedAt]"); v != "" {
		db = dateRange(db, "updated_at", v)
	}
	return applySort(db, q.Get("sort"), map[string]string{
		"id":        "id",
		"title":     "title",
		"status":    "status",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	})
}

// AuthorFilter narrows user listings.
type AuthorFilter struct{}

func (AuthorFilter) Apply(q url.Values, db *gorm.DB) *gorm.DB {
	if v := q.Get("filter[name]"); v != "" {
		db = db.Where("name LIKE ?", likeValue(v))
	}
	if v := q.Get("filter[email]"); v != "" {
		db = db.Where("email LIKE ?", likeValue(v))
	}
	if v := q.Get("filter[createdAt]"); v != "" {
		db = dateRange(db, "created_at", v)
	}
	return applySort(db, q.Get("sort"), map[string]string{
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"createdAt": "created_at",
	})
}

// likeValue turns the API's * wildcard into SQL's %.
func likeValue(v string) string {
	return strings.ReplaceAll(v, "*", "%")
}

// dateRange filters a column by "YYYY-MM-DD" (single day) or
// "from,to" (inclusive range of days). Unparseable dates leave the
// query untouched.
func dateRange(db *gorm.DB, column, v string) *gorm.DB {
	parts := strings.SplitN(v, ",", 2)
	from, err := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	if err != nil {
		return db
	}
	to := from
	if len(parts) == 2 {
		if t, err := time.Parse("2006-01-02", strings.TrimSpace(parts[1])); err == nil {
			to = t
		}
	}
	return db.Where(column+" >= ? AND "+column+" < ?", from, to.Add(24*time.Hour))
}

// applySort orders by a comma-separated field list; a leading dash
// means descending. Fields outside the safe list are ignored.
func applySort(db *gorm.DB, sort string, allowed map[string]string) *gorm.DB {
	if sort == "" {
		return db
	}
	for _, field := range strings.Split(sort, ",") {
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		column, ok := allowed[field]
		if !ok {
			continue
		}
		if desc {
			column += " DESC"
		}
		db = db.Order(column)
	}
	return db
}
