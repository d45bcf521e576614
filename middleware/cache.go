package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"expensetracker/cache"

	"github.com/gin-gonic/gin"
)

// cacheKey 缓存键 = 当前用户 ID + 完整请求 URI
// 带认证的读接口按用户隔离，避免跨用户返回缓存数据
func cacheKey(c *gin.Context) string {
	return fmt.Sprintf("%d:%s", GetCurrentUserID(c), c.Request.URL.RequestURI())
}

// bodyCapture 包装 ResponseWriter，旁路记录响应体
type bodyCapture struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage 读接口响应缓存中间件
// 命中未过期条目时原样返回缓存体，未命中时缓存本次 200 响应
func CachePage(store *cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)
		if e, ok := store.Get(key); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, e.ContentType, e.Body)
			c.Abort()
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = capture
		c.Next()

		// 仅缓存成功响应
		if c.Writer.Status() == http.StatusOK && capture.buf.Len() > 0 {
			store.Set(key, cache.Entry{
				Body:        capture.buf.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			}, ttl)
		}
	}
}

// FlushOnWrite 写请求缓存失效中间件
// 任何变更请求（POST/PUT/DELETE/PATCH）在处理前整体清空缓存，
// 保证读缓存不会返回早于最近一次写的数据
func FlushOnWrite(store *cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store != nil {
			switch c.Request.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
				store.Clear()
			}
		}
		c.Next()
	}
}
