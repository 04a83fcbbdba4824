package pagination

import (
	"net/url"
	"slices"

	"github.com/goccy/go-json"
)

// Page is the response envelope of a list endpoint.
// On the wire Extra keys sit next to data, pagination and source; those three win on collision.
type Page[T any] struct {
	Data       []T
	Pagination Meta
	Extra      Extra
	Source     string
}

func (p Page[T]) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	data := p.Data
	if data == nil {
		data = []T{}
	}
	out["data"] = data
	out["pagination"] = p.Pagination
	out["source"] = p.Source
	return json.Marshal(out)
}

func (p *Page[T]) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Page[T]
	for k, v := range raw {
		var err error
		switch k {
		case "data":
			err = json.Unmarshal(v, &out.Data)
		case "pagination":
			err = json.Unmarshal(v, &out.Pagination)
		case "source":
			err = json.Unmarshal(v, &out.Source)
		default:
			var val any
			if err = json.Unmarshal(v, &val); err == nil {
				if out.Extra == nil {
					out.Extra = Extra{}
				}
				out.Extra[k] = val
			}
		}
		if err != nil {
			return err
		}
	}
	*p = out
	return nil
}

// CacheKey identifies a list request by path and every query parameter.
// Parameter order does not matter: keys and the values of a repeated key are encoded sorted.
func CacheKey(path string, params url.Values) string {
	sorted := make(url.Values, len(params))
	for k, vs := range params {
		sorted[k] = slices.Sorted(slices.Values(vs))
	}
	b, err := json.Marshal(sorted)
	if err != nil {
		return path + ":" + sorted.Encode()
	}
	return path + ":" + string(b)
}
