package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var exprPattern = regexp.MustCompile(`\$\{(.*?)\}`)

// RenderString resolves every ${...} token in s against data using jsonpath.
// An unresolvable token is a configuration error.
func RenderString(data map[string]any, s string) (string, error) {
	tokens := exprPattern.FindAllStringSubmatch(s, -1)
	rendered := s
	for _, token := range tokens {
		path := strings.TrimSpace(token[1])
		if !strings.HasPrefix(path, "$") {
			path = "$." + path
		}
		value, err := jsonpath.JsonPathLookup(data, path)
		if err != nil || value == nil {
			return "", fmt.Errorf("can not resolve expression %s", token[0])
		}
		rendered = strings.ReplaceAll(rendered, token[0], fmt.Sprintf("%v", value))
	}
	return rendered, nil
}

// RenderStrings renders a list of templated values, failing on the first
// unresolvable expression.
func RenderStrings(data map[string]any, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	rendered := make([]string, 0, len(values))
	for _, v := range values {
		r, err := RenderString(data, v)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, r)
	}
	return rendered, nil
}
