package middleware

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderAPIVersion is the custom header for API version negotiation.
	HeaderAPIVersion = "X-API-Version"

	// ContextKeyAPIVersion is the Gin context key for the resolved API version.
	ContextKeyAPIVersion = "api_version"

	// CurrentAPIVersion is the latest supported API version.
	CurrentAPIVersion = 1

	// MinAPIVersion is the minimum supported API version.
	MinAPIVersion = 1
)

// acceptVersionRegex matches Accept header like "application/vnd.hardhat.v1+json".
var acceptVersionRegex = regexp.MustCompile(`application/vnd\.hardhat\.v(\d+)\+json`)

// APIVersion resolves the caller's API version and stores it on the gin
// context, echoing the result back via X-API-Version. The mobile app pins
// a version through either the X-API-Version header or an Accept media type
// like "application/vnd.hardhat.v1+json"; unversioned requests get the
// current version.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := resolveAPIVersion(c)
		c.Set(ContextKeyAPIVersion, version)
		c.Header(HeaderAPIVersion, strconv.Itoa(version))
		c.Next()
	}
}

// GetAPIVersion returns the version resolved for this request, falling back
// to the current version when the middleware did not run.
func GetAPIVersion(c *gin.Context) int {
	if v, exists := c.Get(ContextKeyAPIVersion); exists {
		if ver, ok := v.(int); ok {
			return ver
		}
	}
	return CurrentAPIVersion
}

// resolveAPIVersion checks the explicit header first, then the Accept media
// type. Out-of-range versions are ignored rather than rejected.
func resolveAPIVersion(c *gin.Context) int {
	if h := c.GetHeader(HeaderAPIVersion); h != "" {
		if v, err := strconv.Atoi(h); err == nil && v >= MinAPIVersion && v <= CurrentAPIVersion {
			return v
		}
	}

	if accept := c.GetHeader("Accept"); accept != "" {
		if matches := acceptVersionRegex.FindStringSubmatch(accept); len(matches) == 2 {
			if v, err := strconv.Atoi(matches[1]); err == nil && v >= MinAPIVersion && v <= CurrentAPIVersion {
				return v
			}
		}
	}

	return CurrentAPIVersion
}
