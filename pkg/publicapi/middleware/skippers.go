package middleware

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/samber/lo"
)

const globMeta = "*?[{"

// SkipPathsSkipper skips requests matching any of paths. Entries with glob
// characters are matched as doublestar patterns, e.g. "/static/**", and the
// rest must equal the request path exactly.
func SkipPathsSkipper(paths []string) echomiddelware.Skipper {
	isGlob := func(path string, _ int) bool {
		return strings.ContainsAny(path, globMeta)
	}
	globs := lo.Filter(paths, isGlob)
	exact := lo.Reject(paths, isGlob)
	return ChainedSkipper(PathMatchSkipper(exact), PathGlobSkipper(globs))
}

// PathMatchSkipper skips requests whose request path is one of paths.
func PathMatchSkipper(paths []string) echomiddelware.Skipper {
	skippedPaths := lo.SliceToMap(paths, func(path string) (string, struct{}) {
		return path, struct{}{}
	})
	return func(c echo.Context) bool {
		_, ok := skippedPaths[c.Request().URL.Path]
		return ok
	}
}

// PathGlobSkipper skips requests whose path matches one of patterns.
// Invalid patterns never match.
func PathGlobSkipper(patterns []string) echomiddelware.Skipper {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		return lo.ContainsBy(patterns, func(pattern string) bool {
			ok, err := doublestar.Match(pattern, path)
			return err == nil && ok
		})
	}
}

// ChainedSkipper creates a skipper that skips if any of the provided skippers returns true
func ChainedSkipper(skippers ...echomiddelware.Skipper) echomiddelware.Skipper {
	return func(c echo.Context) bool {
		for _, skipper := range skippers {
			if skipper(c) {
				return true
			}
		}
		return false
	}
}
