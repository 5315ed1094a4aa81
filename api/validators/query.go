package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/pagination"
)

// ParseQueryInt reads an optional integer query parameter bounded to
// [min, max]. Absent or blank values yield def.
func ParseQueryInt(r *http.Request, key string, def, min, max int) (int, error) {
	values := r.URL.Query()[key]
	if len(values) > 1 {
		return 0, queryError(key, "query parameter given more than once", nil)
	}
	raw := ""
	if len(values) == 1 {
		raw = strings.TrimSpace(values[0])
	}
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "query parameter must be an integer", nil)
	}
	if n < min || n > max {
		return 0, queryError(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return n, nil
}

// ParsePagination reads ?limit and ?cursor for keyset-paginated lists. The
// cursor is checked here so a tampered value fails before any query runs.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
	if _, err := pagination.ParseCursor(cursor); err != nil {
		return pagination.Params{}, queryError("cursor", "invalid cursor", nil)
	}
	return pagination.Params{Limit: limit, Cursor: cursor}, nil
}

func queryError(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
