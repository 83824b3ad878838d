package reports

import (
	"fmt"
	"strconv"
	"strings"
)

// Document helpers operate on the generic form produced by encoding/json.
// They never fail on absent keys; shape violations are reported by the callers.

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

func mapAt(doc map[string]interface{}, key string) map[string]interface{} {
	m, _ := asMap(doc[key])
	return m
}

func listAt(doc map[string]interface{}, key string) []interface{} {
	l, _ := asList(doc[key])
	return l
}

func has(doc map[string]interface{}, key string) bool {
	v, ok := doc[key]
	return ok && v != nil
}

// rename moves from to to unless to is already set
func rename(doc map[string]interface{}, from, to string) {
	v, ok := doc[from]
	if !ok {
		return
	}
	delete(doc, from)
	if !has(doc, to) {
		doc[to] = v
	}
}

// stringOf renders scalars as strings; identifiers are numbers in some payloads
func stringOf(v interface{}) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	case int:
		return strconv.Itoa(value), true
	case bool:
		return strconv.FormatBool(value), true
	}
	return "", false
}

func stringAt(doc map[string]interface{}, key string) string {
	s, _ := stringOf(doc[key])
	return s
}

// intOf accepts numbers and numeric strings
func intOf(v interface{}) (int, bool) {
	switch value := v.(type) {
	case float64:
		return int(value), value == float64(int(value))
	case int:
		return value, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		return n, err == nil
	}
	return 0, false
}

// stringToList wraps a bare string into a list, dropping empty strings
func stringToList(doc map[string]interface{}, key string) {
	v, ok := doc[key]
	if !ok || v == nil {
		return
	}
	if s, isString := v.(string); isString {
		if s == "" {
			doc[key] = []interface{}{}
			return
		}
		doc[key] = []interface{}{s}
	}
}

// eachMap applies fn to every object of a list, reporting the index of a failure
func eachMap(list []interface{}, fn func(i int, item map[string]interface{}) error) error {
	for i, raw := range list {
		item, ok := asMap(raw)
		if !ok {
			return &FieldError{Path: fmt.Sprintf("[%d]", i), Reason: "expected an object"}
		}
		if err := fn(i, item); err != nil {
			return prefixPath(err, fmt.Sprintf("[%d]", i))
		}
	}
	return nil
}

// eachMapAt is eachMap over the list stored under key
func eachMapAt(doc map[string]interface{}, key string, fn func(i int, item map[string]interface{}) error) error {
	v, ok := doc[key]
	if !ok || v == nil {
		return nil
	}
	list, isList := asList(v)
	if !isList {
		return &FieldError{Path: key, Reason: "expected a list"}
	}
	return prefixPath(eachMap(list, fn), key)
}

// declaredVersion reads versionControl.gitVersionControl, or the GitVersionControl
// spelling used by the 4.x models
func declaredVersion(doc map[string]interface{}) Version {
	vc := mapAt(doc, "versionControl")
	if vc == nil {
		return ""
	}
	if v := stringAt(vc, "gitVersionControl"); v != "" {
		return Version(v)
	}
	return Version(stringAt(vc, "GitVersionControl"))
}

func setVersion(doc map[string]interface{}, version Version) {
	doc["versionControl"] = map[string]interface{}{"gitVersionControl": string(version)}
}

// anyMap reports whether pred holds for at least one object of the list under key
func anyMap(doc map[string]interface{}, key string, pred func(map[string]interface{}) bool) bool {
	for _, raw := range listAt(doc, key) {
		if item, ok := asMap(raw); ok && pred(item) {
			return true
		}
	}
	return false
}
