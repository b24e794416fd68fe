package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
)

// Built-in validators. Every rule except "required" accepts the empty string:
// optionality is expressed by adding "required", not by every rule rejecting
// absent input.
var builtins = map[string]domain.ValidatorFunc{
	"required":    required,
	"string":      isString,
	"email":       matcher(emailRe),
	"numeric":     matcher(numericRe),
	"alpha":       matcher(alphaRe),
	"alphanum":    matcher(alphanumRe),
	"postcode":    matcher(postcodeRe),
	"url":         isURL,
	"regex":       regex,
	"minlength":   minlength,
	"maxlength":   maxlength,
	"exactlength": exactlength,
	"equal":       equal,
}

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	numericRe  = regexp.MustCompile(`^\d+$`)
	alphaRe    = regexp.MustCompile(`^[a-zA-Z]*$`)
	alphanumRe = regexp.MustCompile(`^[a-zA-Z0-9]*$`)
	postcodeRe = regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`)
)

func required(ctx *domain.Context, value any, args ...any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}

func isString(ctx *domain.Context, value any, args ...any) bool {
	if value == nil {
		return true
	}
	_, ok := value.(string)
	return ok
}

// matcher builds a validator from a pattern, passing empty/non-string values
// through.
func matcher(re *regexp.Regexp) domain.ValidatorFunc {
	return func(ctx *domain.Context, value any, args ...any) bool {
		s, ok := asOptionalString(value)
		if !ok {
			return false
		}
		return s == "" || re.MatchString(s)
	}
}

func isURL(ctx *domain.Context, value any, args ...any) bool {
	s, ok := asOptionalString(value)
	if !ok {
		return false
	}
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// regex matches against a pattern supplied as the first argument, either a
// string or a precompiled *regexp.Regexp.
func regex(ctx *domain.Context, value any, args ...any) bool {
	s, ok := asOptionalString(value)
	if !ok || len(args) == 0 {
		return false
	}
	if s == "" {
		return true
	}
	switch p := args[0].(type) {
	case *regexp.Regexp:
		return p.MatchString(s)
	case string:
		re, err := regexp.Compile(p)
		return err == nil && re.MatchString(s)
	default:
		return false
	}
}

func minlength(ctx *domain.Context, value any, args ...any) bool {
	s, ok := asOptionalString(value)
	n, nok := argInt(args)
	if !ok || !nok {
		return false
	}
	return s == "" || len([]rune(s)) >= n
}

func maxlength(ctx *domain.Context, value any, args ...any) bool {
	s, ok := asOptionalString(value)
	n, nok := argInt(args)
	if !ok || !nok {
		return false
	}
	return s == "" || len([]rune(s)) <= n
}

func exactlength(ctx *domain.Context, value any, args ...any) bool {
	s, ok := asOptionalString(value)
	n, nok := argInt(args)
	if !ok || !nok {
		return false
	}
	return s == "" || len([]rune(s)) == n
}

// equal passes when the value equals any of the arguments. This is the rule
// appended for fields with an options list.
func equal(ctx *domain.Context, value any, args ...any) bool {
	if s, ok := value.(string); ok && s == "" {
		return true
	}
	for _, arg := range args {
		if LooseEqual(value, arg) {
			return true
		}
	}
	return false
}

// asOptionalString accepts strings and numeric scalars. JSON decoding hands
// numbers over as float64, so pattern rules coerce them to their canonical
// string form rather than rejecting them outright.
func asOptionalString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case int, int32, int64, float32, float64:
		f, _ := AsFloat(v)
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}

func argInt(args []any) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// LooseEqual compares scalars across the numeric types YAML and JSON decoding
// produce, falling back to string equality of formatted values.
func LooseEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
