package routepath

import "strings"

// ParsePath splits a raw target into path, query (without "?") and hash
// (with its leading "#").
func ParsePath(raw string) (path, query, hash string) {
	path = raw
	if i := strings.IndexByte(path, '#'); i >= 0 {
		hash = path[i:]
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		query = path[i+1:]
		path = path[:i]
	}
	return path, query, hash
}

// Join reassembles a path, a query string (without "?") and a hash.
func Join(path, query, hash string) string {
	var b strings.Builder
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	if hash != "" && hash != "#" {
		if hash[0] != '#' {
			b.WriteByte('#')
		}
		b.WriteString(hash)
	}
	return b.String()
}

// ResolvePath resolves relative against base.
//
// Absolute paths are returned as is. A relative path starting with "?" or "#"
// is appended to base. Otherwise the last segment of base is dropped (unless
// appending) and the relative segments are applied, honouring "." and "..".
func ResolvePath(relative, base string, appendPath bool) string {
	if relative == "" {
		return base
	}
	switch relative[0] {
	case '/':
		return relative
	case '?', '#':
		return base + relative
	}

	stack := strings.Split(base, "/")

	// Drop the last segment unless appending, or when base ends in "/".
	if !appendPath || stack[len(stack)-1] == "" {
		stack = stack[:len(stack)-1]
	}

	for _, seg := range strings.Split(strings.TrimPrefix(relative, "/"), "/") {
		switch seg {
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ".":
		default:
			stack = append(stack, seg)
		}
	}

	// Ensure leading slash.
	if len(stack) == 0 || stack[0] != "" {
		stack = append([]string{""}, stack...)
	}

	return strings.Join(stack, "/")
}

// CleanPath collapses repeated slashes.
func CleanPath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// NormalizeBase turns a configured base into "" or "/segment..." form:
// the origin of a full URL is stripped, a leading slash is ensured and a
// trailing slash removed.
func NormalizeBase(base string) string {
	if base == "" {
		base = "/"
	}
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(base, scheme) {
			rest := base[len(scheme):]
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				base = rest[i:]
			} else {
				base = "/"
			}
		}
	}
	if base[0] != '/' {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}

// StripBase removes base from the front of location. Locations outside base
// are returned unchanged. The result always starts with "/".
func StripBase(location, base string) string {
	if base != "" && strings.HasPrefix(location, base) {
		location = location[len(base):]
	}
	if location == "" || location[0] != '/' {
		location = "/" + location
	}
	return location
}
