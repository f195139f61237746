package dbgg

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
)

// BotQuery filters and paginates GET /bots.
type BotQuery struct {
	// Fields restricts which bot fields the API returns.
	Fields []string
	// Search maps field names to the value they must match.
	Search map[string]string

	Query      string
	Page       int
	Limit      int
	AuthorID   string
	AuthorName string
	Unverified *bool
	Library    string
	Sort       string
	Order      string
}

// FormatFields joins field names the way the listing API expects them:
// "id, username".
func FormatFields(fields []string) string {
	return strings.Join(fields, ", ")
}

// FormatSearch renders a search map as space separated "key: value" tokens,
// ordered by key. Values are not escaped.
func FormatSearch(search map[string]string) string {
	keys := maps.Keys(search)
	sort.Strings(keys)
	tokens := make([]string, 0, len(keys))
	for _, k := range keys {
		tokens = append(tokens, k+": "+search[k])
	}
	return strings.Join(tokens, " ")
}

func (q *BotQuery) Values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if len(q.Fields) > 0 {
		v.Set("fields", FormatFields(q.Fields))
	}
	if len(q.Search) > 0 {
		v.Set("search", FormatSearch(q.Search))
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.AuthorID != "" {
		v.Set("authorId", q.AuthorID)
	}
	if q.AuthorName != "" {
		v.Set("authorName", q.AuthorName)
	}
	if q.Unverified != nil {
		v.Set("unverified", strconv.FormatBool(*q.Unverified))
	}
	if q.Library != "" {
		v.Set("lib", q.Library)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	return v
}

// QueryEncoder is implemented by request bodies that know how to turn
// themselves into URL parameters for GET requests.
type QueryEncoder interface {
	Values() url.Values
}

// queryValues converts a GET request "body" into URL parameters.
func queryValues(body any) (url.Values, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return b, nil
	case QueryEncoder:
		return b.Values(), nil
	case map[string]string:
		v := url.Values{}
		for k, s := range b {
			v.Set(k, s)
		}
		return v, nil
	}

	// anything else goes through its JSON form so struct tags are honoured
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encoding query: %T is not an object", body)
	}
	v := url.Values{}
	for k, val := range doc {
		switch t := val.(type) {
		case nil:
			continue
		case string:
			v.Set(k, t)
		case float64:
			v.Set(k, strconv.FormatFloat(t, 'f', -1, 64))
		default:
			v.Set(k, fmt.Sprint(t))
		}
	}
	return v, nil
}
