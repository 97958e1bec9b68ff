package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/cctncr/habitstreak/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CacheMiddleware serves successful GET responses from redis so habit
// list and stats endpoints do not hit postgres on every poll.
type CacheMiddleware struct {
	cache  *cache.RedisClient
	prefix string
	ttl    time.Duration
	log    *logrus.Logger
}

func NewCacheMiddleware(redis *cache.RedisClient, prefix string, ttl time.Duration, log *logrus.Logger) *CacheMiddleware {
	return &CacheMiddleware{
		cache:  redis,
		prefix: prefix,
		ttl:    ttl,
		log:    log,
	}
}

// responseBuffer tees the response body so it can be cached after the
// handler runs.
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{
		ResponseWriter: original,
		body:           bytes.NewBuffer(nil),
	}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse caches successful GET responses under the middleware TTL.
func (m *CacheMiddleware) CacheResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := m.cacheKey(c)

		if data, err := m.cache.GetRaw(c, key); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			c.Abort()
			return
		}

		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := m.cache.SetRaw(c, key, buff.body.Bytes(), m.ttl); err != nil {
				m.log.WithError(err).Warn("Failed to cache response")
			}
		}

		c.Writer = writer
	}
}

// CacheInvalidate drops matching cache entries after a successful
// mutating request.
func (m *CacheMiddleware) CacheInvalidate(patterns ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if m.cache == nil {
			return
		}
		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			for _, pattern := range patterns {
				if err := m.cache.InvalidatePattern(c, m.prefix+":"+pattern); err != nil {
					m.log.WithError(err).WithField("pattern", pattern).Warn("Failed to invalidate cache")
				}
			}
		}
	}
}

func (m *CacheMiddleware) cacheKey(c *gin.Context) string {
	parts := []string{m.prefix, strings.Trim(c.Request.URL.Path, "/")}
	if len(c.Request.URL.RawQuery) > 0 {
		parts = append(parts, c.Request.URL.RawQuery)
	}
	return strings.Join(parts, ":")
}
