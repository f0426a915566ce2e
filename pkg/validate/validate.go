// Package validate checks struct fields against rules in a `validate` tag.
//
// Rules, comma separated:
//
//	required      not zero / not blank
//	nullable      skip the remaining rules when empty
//	email         looks like an address
//	url           absolute http(s) URL
//	numeric       parses as a decimal number
//	alpha_dash    letters, digits, '-' and '_'
//	objectid      24 hex characters
//	min=N max=N   string length, or numeric value for number kinds
//	gte=N lte=N   numeric bounds (strings are parsed first)
//	in=a,b,c      one of the listed values
//
// Example:
//
//	type RoleInput struct {
//	    Role string `json:"role" validate:"required,in=user,admin"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type rule func(field, param string, v reflect.Value) string

var rules map[string]rule

func init() {
	rules = map[string]rule{
		"required":   required,
		"nullable":   func(string, string, reflect.Value) string { return "" },
		"email":      email,
		"url":        absURL,
		"numeric":    numeric,
		"alpha_dash": alphaDash,
		"objectid":   objectID,
		"min":        minRule,
		"max":        maxRule,
		"gte":        gte,
		"lte":        lte,
		"in":         in,
	}
}

// Struct validates the exported fields of v that carry a `validate` tag and
// returns json field name → first failing message.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := jsonFieldName(sf)
		parsed := splitRules(tag)

		if _, ok := parsed["nullable"]; ok && isEmpty(value) {
			continue
		}
		for _, r := range ordered(tag, parsed) {
			fn, ok := rules[r]
			if !ok {
				continue
			}
			if msg := fn(name, parsed[r], value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ─── Rules ───────────────────────────────────────────────────────────────────

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	objectIDRE = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

func required(field, _ string, v reflect.Value) string {
	if isEmpty(v) {
		return fmt.Sprintf("The %s field is required.", field)
	}
	return ""
}

func email(field, _ string, v reflect.Value) string {
	if !emailRE.MatchString(str(v)) {
		return fmt.Sprintf("The %s must be a valid email address.", field)
	}
	return ""
}

func absURL(field, _ string, v reflect.Value) string {
	u, err := url.ParseRequestURI(str(v))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("The %s must be a valid URL.", field)
	}
	return ""
}

func numeric(field, _ string, v reflect.Value) string {
	if isNumericKind(v) {
		return ""
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(str(v)), 64); err != nil {
		return fmt.Sprintf("The %s field must be a number.", field)
	}
	return ""
}

func alphaDash(field, _ string, v reflect.Value) string {
	for _, c := range str(v) {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
			return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
		}
	}
	return ""
}

func objectID(field, _ string, v reflect.Value) string {
	if !objectIDRE.MatchString(str(v)) {
		return fmt.Sprintf("The %s must be a valid id.", field)
	}
	return ""
}

func minRule(field, param string, v reflect.Value) string {
	n := parseFloat(param)
	if isNumericKind(v) {
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return ""
	}
	if float64(length(v)) < n {
		return fmt.Sprintf("The %s must be at least %s characters.", field, param)
	}
	return ""
}

func maxRule(field, param string, v reflect.Value) string {
	n := parseFloat(param)
	if isNumericKind(v) {
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		return ""
	}
	if float64(length(v)) > n {
		return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
	}
	return ""
}

func gte(field, param string, v reflect.Value) string {
	f, ok := number(v)
	if !ok || f < parseFloat(param) {
		return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
	}
	return ""
}

func lte(field, param string, v reflect.Value) string {
	f, ok := number(v)
	if !ok || f > parseFloat(param) {
		return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
	}
	return ""
}

func in(field, param string, v reflect.Value) string {
	raw := str(v)
	for _, a := range strings.Split(param, ",") {
		if raw == strings.TrimSpace(a) {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// splitRules maps rule name → param. A comma-separated token that is not a
// rule name continues the previous rule's param, so "in=a,b,c" stays whole.
func splitRules(tag string) map[string]string {
	out := map[string]string{}
	last := ""
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		name, param, _ := strings.Cut(tok, "=")
		if _, known := rules[name]; known {
			out[name] = param
			last = name
			continue
		}
		if last != "" {
			out[last] += "," + tok
		}
	}
	return out
}

// ordered returns rule names in tag order.
func ordered(tag string, parsed map[string]string) []string {
	var names []string
	seen := map[string]bool{}
	for _, tok := range strings.Split(tag, ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(tok), "=")
		if _, ok := parsed[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func str(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func length(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(str(v)))
}

func number(v reflect.Value) (float64, bool) {
	if isNumericKind(v) {
		return toFloat(v), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str(v)), 64)
	return f, err == nil
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if isNumericKind(v) {
		return toFloat(v) == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}
