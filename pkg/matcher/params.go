package matcher

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	naverrors "github.com/vango-dev/navcore/internal/errors"
)

type segmentKind int

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentCatchAll
)

// catchAllDefault is the param name of an unnamed catch-all ("*").
const catchAllDefault = "pathMatch"

type segment struct {
	kind      segmentKind
	name      string
	paramType string
}

// parsePattern splits a route pattern into typed segments.
// Accepted forms: "users", ":id", ":id:int", "*rest" and "*".
func parsePattern(pattern string) ([]segment, error) {
	parts := splitPath(pattern)
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool)

	for i, part := range parts {
		var seg segment
		switch {
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, naverrors.New(naverrors.CodeInvalidPattern).
					WithDetail(fmt.Sprintf("catch-all %q must be the last segment of %q", part, pattern))
			}
			seg = segment{kind: segmentCatchAll, name: part[1:]}
			if seg.name == "" {
				seg.name = catchAllDefault
			}
		case strings.HasPrefix(part, ":"):
			name, paramType := parseParamSegment(part)
			if name == "" {
				return nil, naverrors.New(naverrors.CodeInvalidPattern).
					WithDetail(fmt.Sprintf("unnamed parameter in %q", pattern))
			}
			if !knownParamType(paramType) {
				return nil, naverrors.New(naverrors.CodeInvalidPattern).
					WithDetail(fmt.Sprintf("unknown parameter type %q in %q", paramType, pattern))
			}
			seg = segment{kind: segmentParam, name: name, paramType: paramType}
		default:
			seg = segment{kind: segmentStatic, name: part}
		}
		if seg.kind != segmentStatic {
			if seen[seg.name] {
				return nil, naverrors.New(naverrors.CodeInvalidPattern).
					WithDetail(fmt.Sprintf("parameter %q repeated in %q", seg.name, pattern))
			}
			seen[seg.name] = true
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}

// ParamNames returns the parameter names of pattern in order.
func ParamNames(pattern string) []string {
	segments, err := parsePattern(pattern)
	if err != nil {
		return nil
	}
	var names []string
	for _, seg := range segments {
		if seg.kind != segmentStatic {
			names = append(names, seg.name)
		}
	}
	return names
}

// FillParams renders pattern with params. Every parameter must be present;
// a catch-all may be empty.
func FillParams(pattern string, params map[string]string) (string, error) {
	segments, err := parsePattern(pattern)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, seg := range segments {
		switch seg.kind {
		case segmentStatic:
			b.WriteByte('/')
			b.WriteString(seg.name)
		case segmentParam:
			value, ok := params[seg.name]
			if !ok || value == "" {
				return "", naverrors.Newf(naverrors.CodeMissingParam, "missing param %q for %q", seg.name, pattern)
			}
			if err := ValidateParam(value, seg.paramType); err != nil {
				return "", naverrors.New(naverrors.CodeMissingParam).
					WithDetail(fmt.Sprintf("param %q for %q", seg.name, pattern)).
					Wrap(err)
			}
			b.WriteByte('/')
			b.WriteString(url.PathEscape(value))
		case segmentCatchAll:
			value := strings.Trim(params[seg.name], "/")
			if value != "" {
				b.WriteByte('/')
				b.WriteString(escapeCatchAll(value))
			}
		}
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

func escapeCatchAll(value string) string {
	parts := strings.Split(value, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func knownParamType(paramType string) bool {
	switch paramType {
	case "string", "", "int", "int64", "int32", "int16", "int8",
		"uint", "uint64", "uint32", "uint16", "uint8", "uuid":
		return true
	}
	return false
}

// ValidateUUID validates that a string is a canonical UUID.
func ValidateUUID(value string) error {
	if len(value) != 36 || uuid.Validate(value) != nil {
		return fmt.Errorf("invalid UUID: %s", value)
	}
	return nil
}

// ValidateInt validates that a string is a valid integer.
func ValidateInt(value string) error {
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	return nil
}

// ValidateParam validates a parameter value against its expected type.
func ValidateParam(value, paramType string) error {
	switch paramType {
	case "int", "int64", "int32", "int16", "int8":
		return ValidateInt(value)
	case "uint", "uint64", "uint32", "uint16", "uint8":
		if _, err := strconv.ParseUint(value, 10, 64); err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
	case "uuid":
		return ValidateUUID(value)
	}
	return nil
}
