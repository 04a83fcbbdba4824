package pagination

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query-string parameter names.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"
	ParamAfter  = "after"
)

// ParseRequest reads limit, offset and after from query parameters.
// Empty values count as absent; non-integer limit or offset is a client error.
func ParseRequest(params url.Values) (Request, error) {
	var req Request
	if v := strings.TrimSpace(params.Get(ParamLimit)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Request{}, invalid("limit must be an integer")
		}
		req.Limit = &n
	}
	if v := strings.TrimSpace(params.Get(ParamOffset)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Request{}, invalid("offset must be an integer")
		}
		req.Offset = &n
	}
	if v := strings.TrimSpace(params.Get(ParamAfter)); v != "" {
		req.After = &v
	}
	return req, nil
}

// plan is a validated request: everything that can be checked without touching the store.
type plan struct {
	limit  int
	offset int
	cursor any
}

func (p plan) cursorMode() bool { return p.cursor != nil }

// Validate checks a request against cfg without touching the store.
// The offset-past-total check needs the row count and happens later in Respond.
func Validate(req Request, cfg Config) error {
	_, err := validate(req, cfg)
	return err
}

func validate(req Request, cfg Config) (plan, error) {
	if req.Offset != nil && req.After != nil {
		return plan{}, invalid("offset and after are mutually exclusive")
	}

	limit := cfg.MaxLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}

	if req.After != nil {
		if cfg.OrderBy == "" {
			return plan{}, invalid("after requires an ordering column")
		}
		cursor, err := parseCursor(*req.After, cfg.CursorKind)
		if err != nil {
			return plan{}, err
		}
		if limit < 0 {
			limit = 0
		}
		return plan{limit: limit, cursor: cursor}, nil
	}

	offset := 0
	if req.Offset != nil {
		offset = *req.Offset
	}
	if offset < 0 {
		return plan{}, invalid("offset must not be negative")
	}
	if limit <= 0 {
		return plan{}, invalid("limit must be positive")
	}
	return plan{limit: limit, offset: offset}, nil
}

var cursorLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseCursor(raw string, kind CursorKind) (any, error) {
	switch kind {
	case CursorTimestamp:
		for _, layout := range cursorLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, invalid("after must be an ISO-8601 timestamp")
	default:
		return raw, nil
	}
}
