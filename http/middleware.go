package http

import (
	"net/http"
	"runtime/debug"
	"time"

	c "github.com/d0ngw/viewcount/common"
)

// Middleware 定义接口
type Middleware interface {
	// Handle 包装next,返回新的处理函数
	Handle(next http.HandlerFunc) http.HandlerFunc
}

// MiddlewareFunc 函数形式的Middleware
type MiddlewareFunc func(next http.HandlerFunc) http.HandlerFunc

// Handle implements Middleware
func (f MiddlewareFunc) Handle(next http.HandlerFunc) http.HandlerFunc {
	return f(next)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// RecoverMiddleware 处理函数panic时记录日志并返回500
type RecoverMiddleware struct{}

// Handle implements Middleware
func (p *RecoverMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			if e := recover(); e != nil {
				if e == http.ErrAbortHandler {
					panic(e)
				}
				c.Errorf("handle %s %s panic:%v\n%s", r.Method, r.URL.Path, e, debug.Stack())
				if sw.status == 0 {
					RenderError(sw, http.StatusInternalServerError, "internal error")
				}
			}
		}()
		next(sw, r)
	}
}

// AccessLogMiddleware 记录请求的方法,路径,状态及耗时
type AccessLogMiddleware struct{}

// Handle implements Middleware
func (p *AccessLogMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		level := c.Info
		if status >= http.StatusInternalServerError {
			level = c.Warn
		}
		c.Logf(level, "%s %s %d %dB %s %s", r.Method, r.URL.Path, status, sw.size, time.Since(start), r.RemoteAddr)
	}
}
