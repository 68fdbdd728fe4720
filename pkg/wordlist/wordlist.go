// Package wordlist supplies candidate parameter names for discovery
// runs: a built-in list derived from Arjun's params.txt plus loading
// from user-provided files.
package wordlist

import (
	"os"
	"strings"
)

// LoadFile loads parameter names from a file, one per line. Blank lines
// and #-comments are skipped.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		word := strings.TrimSpace(line)
		if word != "" && !strings.HasPrefix(word, "#") {
			words = append(words, word)
		}
	}
	return words, nil
}

// Builtin returns the deduplicated built-in parameter wordlist.
func Builtin() []string {
	raw := []string{
		// Common authentication/session
		"id", "user", "username", "userid", "user_id", "uid", "login", "email", "mail",
		"password", "passwd", "pass", "pwd", "secret", "token", "auth", "key", "apikey",
		"api_key", "apiKey", "access_token", "accessToken", "refresh_token", "refreshToken",
		"session", "sessionid", "session_id", "sid", "jwt", "bearer", "oauth", "oauth_token",

		// Common identifiers
		"uuid", "guid", "ref", "reference", "num", "number", "no",
		"code", "pk", "sk", "fk", "idx", "index", "hash", "checksum",

		// Pagination/filtering
		"page", "p", "pg", "offset", "limit", "size", "pageSize", "page_size", "pageNum",
		"page_num", "perPage", "per_page", "count", "start", "end", "from", "to",
		"sort", "sortBy", "sort_by", "order", "orderBy", "order_by", "asc", "desc",
		"filter", "filters", "search", "q", "query", "keyword", "keywords", "term", "terms",

		// Common CRUD parameters
		"action", "act", "do", "cmd", "command", "op", "operation", "type", "method",
		"mode", "state", "status", "flag", "step", "stage", "phase",
		"create", "read", "update", "delete", "add", "edit", "remove", "modify",

		// Content/data
		"data", "body", "content", "text", "message", "msg", "value", "val", "values",
		"input", "output", "result", "results", "response", "request", "payload",
		"json", "xml", "html", "format", "encoding", "charset",

		// File operations
		"file", "filename", "file_name", "fileName", "path", "filepath", "file_path",
		"dir", "directory", "folder", "upload", "download", "attachment", "doc", "document",
		"image", "img", "photo", "picture", "video", "audio", "media",
		"url", "uri", "link", "href", "src", "source", "dest", "destination", "target",

		// URLs and routing
		"redirect", "redirectUrl", "redirect_url", "returnUrl",
		"return_url", "next", "nextUrl", "next_url", "callback", "callbackUrl", "callback_url",
		"continue", "continueUrl", "continue_url", "goto", "forward", "redir",

		// API specific
		"version", "v", "ver", "api", "api_version", "apiVersion", "endpoint",
		"resource", "resources", "methods", "fields", "include", "exclude",
		"expand", "embed", "projection", "select", "columns",

		// Common names
		"name", "title", "label", "description", "desc", "summary", "details",
		"first_name", "firstName", "last_name", "lastName", "full_name", "fullName",
		"display_name", "displayName", "nickname", "alias",

		// Boolean flags
		"enabled", "disabled", "active", "inactive", "visible", "hidden", "public", "private",
		"admin", "debug", "test", "dev", "prod", "production", "verbose", "quiet",
		"force", "confirm", "preview", "draft", "live",

		// Date/time
		"date", "time", "datetime", "timestamp", "ts", "created", "updated", "modified",
		"start_date", "startDate", "end_date", "endDate", "year", "month", "day",

		// Categories/tags
		"category", "categories", "cat", "types", "tag", "tags", "class", "classes",
		"group", "groups", "topic", "topics", "subject", "labels",

		// Security/permissions
		"role", "roles", "permission", "permissions", "scope", "scopes", "grant", "grants",
		"access", "level", "privilege", "privileges",

		// Settings/config
		"setting", "settings", "config", "configuration", "option", "options",
		"preference", "preferences", "pref", "prefs", "param", "params", "parameter",

		// Misc common
		"lang", "language", "locale", "currency", "timezone", "tz", "theme", "color",
		"template", "layout", "view", "render", "partial", "component",
		"handler", "listener", "hook", "event", "trigger",
		"cache", "refresh", "reload", "reset", "clear", "flush",
		"backup", "restore", "export", "import", "sync", "async",

		// Error handling
		"error", "errors", "err", "exception", "reason", "cause", "stack", "trace",

		// Format selection
		"fmt", "accept", "content_type", "contentType", "_format",

		// Framework specific
		"_token", "_csrf", "csrf_token", "csrfToken", "authenticity_token",
		"_method", "_action", "__RequestVerificationToken",

		// JSONP/CORS
		"jsonp", "cb", "jsonpcallback",

		// Common vulnerable parameters
		"show", "site", "article", "parser", "php_path", "conf", "menu",
		"root", "fetch", "load", "read", "style", "pdf",
	}

	// Deduplicate: the list is organized by category so entries
	// intentionally appear in multiple sections for readability.
	seen := make(map[string]struct{}, len(raw))
	deduped := make([]string, 0, len(raw))
	for _, w := range raw {
		if _, dup := seen[w]; !dup {
			seen[w] = struct{}{}
			deduped = append(deduped, w)
		}
	}
	return deduped
}
