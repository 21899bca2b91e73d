// Package seo answers questions about crawl-export data fetched from
// Google Sheets through a pipeline of schema fetch, extraction, column
// resolution, table transformation, and synthesis.
package seo

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// columnAliases maps user-friendly terms to Screaming Frog export
// column names. Lookups are case-insensitive; keys here are lowercase.
var columnAliases = map[string]string{
	// URL/Address
	"url":     "Address",
	"urls":    "Address",
	"address": "Address",
	"page":    "Address",
	"pages":   "Address",
	"link":    "Address",
	"links":   "Address",

	// Title
	"title":        "Title 1",
	"page title":   "Title 1",
	"titles":       "Title 1",
	"title tag":    "Title 1",
	"title tags":   "Title 1",
	"title 1":      "Title 1",
	"title length": "Title 1 Length",
	"title len":    "Title 1 Length",

	// Meta description
	"meta description":        "Meta Description 1",
	"meta descriptions":       "Meta Description 1",
	"description":             "Meta Description 1",
	"descriptions":            "Meta Description 1",
	"meta desc":               "Meta Description 1",
	"meta description 1":      "Meta Description 1",
	"meta description length": "Meta Description 1 Length",
	"description length":      "Meta Description 1 Length",

	// H1
	"h1":        "H1-1",
	"h1s":       "H1-1",
	"h1 tag":    "H1-1",
	"h1 tags":   "H1-1",
	"heading":   "H1-1",
	"headings":  "H1-1",
	"h1-1":      "H1-1",
	"h1 length": "H1-1 Length",

	// H2
	"h2":   "H2-1",
	"h2s":  "H2-1",
	"h2-1": "H2-1",

	// Status code
	"status":        "Status Code",
	"status code":   "Status Code",
	"http status":   "Status Code",
	"response code": "Status Code",
	"status codes":  "Status Code",

	// Indexability
	"indexable":           "Indexability",
	"indexability":        "Indexability",
	"index status":        "Indexability",
	"indexed":             "Indexability",
	"indexability status": "Indexability Status",

	// Word count
	"word count":     "Word Count",
	"words":          "Word Count",
	"content length": "Word Count",

	// Canonical
	"canonical":      "Canonical Link Element 1",
	"canonical url":  "Canonical Link Element 1",
	"canonical link": "Canonical Link Element 1",

	// Redirects
	"redirect":     "Redirect URL",
	"redirect url": "Redirect URL",
	"redirects":    "Redirect URL",
	"redirect to":  "Redirect URL",

	// Content type
	"content type": "Content Type",
	"content":      "Content Type",
	"type":         "Content Type",

	// Links
	"inlinks":         "Inlinks",
	"internal links":  "Inlinks",
	"outlinks":        "Outlinks",
	"external links":  "Outlinks",
	"unique inlinks":  "Unique Inlinks",
	"unique outlinks": "Unique Outlinks",

	// Size / performance
	"size":          "Size (Bytes)",
	"page size":     "Size (Bytes)",
	"response time": "Response Time",
	"load time":     "Response Time",

	// Crawl
	"crawl depth": "Crawl Depth",
	"depth":       "Crawl Depth",
	"level":       "Crawl Depth",
}

// Aliases returns the default alias table, optionally merged with an
// override file. Overrides win on key collisions so deployments can
// adapt to renamed export columns without a rebuild.
func Aliases(overridePath string) map[string]string {
	merged := make(map[string]string, len(columnAliases))
	for k, v := range columnAliases {
		merged[k] = v
	}

	if overridePath == "" {
		return merged
	}

	overrides, err := loadAliasFile(overridePath)
	if err != nil {
		zap.L().Warn("alias override file not loaded, using built-in aliases",
			zap.String("path", overridePath),
			zap.Error(err),
		)
		return merged
	}
	for k, v := range overrides {
		merged[k] = v
	}
	zap.L().Info("alias overrides loaded",
		zap.String("path", overridePath),
		zap.Int("count", len(overrides)),
	)
	return merged
}

func loadAliasFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "seo: read alias file")
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, eris.Wrap(err, "seo: parse alias file")
	}
	return overrides, nil
}
