// pkg/registry/index.go
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"immigration-workers/internal/crs"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// EnsureIndex creates index with IndexMapping when it does not exist yet.
func EnsureIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(IndexMapping),
	}.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	return nil
}

// IndexPrograms upserts every program by id in one bulk request and returns
// the number of documents accepted.
func IndexPrograms(ctx context.Context, es *elasticsearch.Client, index string, catalog crs.Catalog) (int, error) {
	if len(catalog) == 0 {
		return 0, nil
	}
	if err := EnsureIndex(ctx, es, index); err != nil {
		return 0, err
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, p := range catalog {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(p); err != nil {
			return 0, err
		}
	}

	res, err := esapi.BulkRequest{Body: &body, Refresh: "wait_for"}.Do(ctx, es)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("bulk index: %s", res.String())
	}

	var br bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	indexed := 0
	var failed []string
	for _, item := range br.Items {
		for _, result := range item {
			if result.Error != nil || result.Status >= 300 {
				reason := "unknown"
				if result.Error != nil {
					reason = result.Error.Reason
				}
				failed = append(failed, fmt.Sprintf("%s: %s", result.ID, reason))
				continue
			}
			indexed++
		}
	}
	if len(failed) > 0 {
		return indexed, fmt.Errorf("%d programs failed to index: %s", len(failed), strings.Join(failed, "; "))
	}
	return indexed, nil
}
