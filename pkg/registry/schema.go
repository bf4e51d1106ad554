// pkg/registry/schema.go
package registry

import "immigration-workers/internal/crs"

// ProgramRegistry is the on-disk form of the program catalog.
type ProgramRegistry struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Programs    crs.Catalog `json:"programs"`
}

// IndexMapping is the Elasticsearch mapping for program documents. name keeps
// a keyword sub-field so browse results can sort alphabetically.
const IndexMapping = `{
	"mappings": {
		"properties": {
			"id":           {"type": "keyword"},
			"name":         {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"category":     {"type": "keyword"},
			"province":     {"type": "keyword"},
			"stream":       {"type": "text"},
			"description":  {"type": "text"},
			"officialLink": {"type": "keyword", "index": false},
			"nextSteps":    {"type": "text"},
			"requirements": {
				"properties": {
					"name":        {"type": "text"},
					"description": {"type": "text"},
					"details":     {"type": "text"},
					"check":       {"type": "keyword"}
				}
			}
		}
	}
}`
