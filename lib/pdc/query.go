package pdc

import (
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

type queryPair struct {
	Field string
	Value string
}

// QueryParams is an ordered field -> value mapping. Insertion order is
// preserved so the same config always yields the same query URL.
type QueryParams struct {
	pairs []queryPair
}

func (p *QueryParams) Set(field, value string) {
	for i, pair := range p.pairs {
		if pair.Field == field {
			p.pairs[i].Value = value
			return
		}
	}
	p.pairs = append(p.pairs, queryPair{Field: field, Value: value})
}

func (p QueryParams) Get(field string) (string, bool) {
	for _, pair := range p.pairs {
		if pair.Field == field {
			return pair.Value, true
		}
	}
	return "", false
}

func (p QueryParams) Len() int {
	return len(p.pairs)
}

// decodes a YAML mapping while keeping the document's key order, which
// a plain map would throw away.
func (p *QueryParams) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("query params must be a mapping, got %s", node.Tag)
	}
	p.pairs = nil
	for i := 0; i < len(node.Content); i += 2 {
		p.pairs = append(p.pairs, queryPair{
			Field: node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	return nil
}

// BuildQuery composes the final request URL. Values are percent-encoded
// here and nowhere else; field names pass through verbatim so Socrata
// names like $limit keep their $. A non-empty token is appended last as
// $$app_token and must never appear in logs or persisted files.
func BuildQuery(baseUrl string, params QueryParams, token string) string {
	var query strings.Builder
	query.WriteString(baseUrl)

	sep := "?"
	for _, pair := range params.pairs {
		query.WriteString(sep)
		query.WriteString(pair.Field)
		query.WriteString("=")
		query.WriteString(url.QueryEscape(pair.Value))
		sep = "&"
	}

	if token != "" {
		query.WriteString(sep)
		query.WriteString("$$app_token=")
		query.WriteString(token)
	}

	return query.String()
}
