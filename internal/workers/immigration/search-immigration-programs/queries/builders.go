// internal/workers/immigration/search-immigration-programs/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// ProgramQuery describes a program search. Empty fields are not filtered on.
type ProgramQuery struct {
	Index    string
	Text     string
	Category string
	Province string
	From     int
	Size     int
}

// Normalize clamps paging into the range the index accepts.
func (q ProgramQuery) Normalize() ProgramQuery {
	if q.From < 0 {
		q.From = 0
	}
	switch {
	case q.Size < 1:
		q.Size = DefaultSize
	case q.Size > MaxSize:
		q.Size = MaxSize
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Province = strings.ToUpper(strings.TrimSpace(q.Province))
	return q
}

// Body renders the bool query: a weighted multi_match when text is given,
// otherwise match_all, with term filters for category and province.
func (q ProgramQuery) Body() map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name^3", "stream^2", "description", "requirements.name"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if q.Category != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": q.Category},
		})
	}
	if q.Province != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"province": q.Province},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
	if q.Text == "" {
		body["sort"] = []interface{}{
			map[string]interface{}{"name.keyword": map[string]interface{}{"order": "asc"}},
		}
	}
	return body
}

func BuildSearch(q ProgramQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	q = q.Normalize()

	body, err := json.Marshal(q.Body())
	if err != nil {
		return nil, err
	}

	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}, nil
}
