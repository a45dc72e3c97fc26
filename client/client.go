// Package client 浏览计数的客户端,包括http接口调用,缓存及展示组件
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	c "github.com/d0ngw/viewcount/common"
	vhttp "github.com/d0ngw/viewcount/http"
	"github.com/d0ngw/viewcount/views"
)

// Config 客户端配置
type Config struct {
	BaseURL   string `yaml:"base_url"`   //服务地址,例如http://127.0.0.1:8080
	Timeout   int    `yaml:"timeout"`    //请求超时,单位毫秒
	Locale    string `yaml:"locale"`     //数字格式化使用的语言,默认en
	CacheSize uint64 `yaml:"cache_size"` //缓存的最大个数,0表示不限制
	CacheFile string `yaml:"cache_file"` //缓存快照文件
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p == nil {
		return nil
	}
	if p.BaseURL == "" {
		p.BaseURL = "http://127.0.0.1:8080"
	}
	if _, err := url.Parse(p.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url %s,err:%w", p.BaseURL, err)
	}
	if p.Timeout <= 0 {
		p.Timeout = 3000
	}
	if p.Locale == "" {
		p.Locale = "en"
	}
	return nil
}

// TimeoutDuration returns the request timeout
func (p *Config) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Millisecond
}

// APIError 服务端返回的错误
type APIError struct {
	StatusCode int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error,status:%d,msg:%s", e.StatusCode, e.Msg)
}

// Reader 读取浏览总数
type Reader interface {
	Read(ctx context.Context, id string) (views.Total, error)
}

// Incrementer 增加浏览数
type Incrementer interface {
	Increment(ctx context.Context, id string) (int64, error)
}

// Client 浏览计数http接口的客户端
type Client struct {
	base       string
	httpClient *http.Client
}

// NewClient create Client,httpClient may be nil
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme of %s", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	return &Client{base: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}, nil
}

// NewClientWithConfig create Client from config
func NewClientWithConfig(conf *Config) (*Client, error) {
	return NewClient(conf.BaseURL, &http.Client{Timeout: conf.TimeoutDuration()})
}

func (p *Client) viewURL(id string) string {
	return p.base + "/views/" + url.PathEscape(id)
}

// Increment POST /views/{id}
func (p *Client) Increment(ctx context.Context, id string) (int64, error) {
	body, _, err := vhttp.PostURL(ctx, p.httpClient, p.viewURL(id), nil, "", nil)
	if err != nil {
		return 0, toAPIError(err)
	}
	var resp views.Resp
	if err = c.JSON.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode response fail,err:%w", err)
	}
	if !resp.Total.Valid {
		return 0, errors.New("no total in response")
	}
	return resp.Total.Value, nil
}

// Read GET /views/{id}
func (p *Client) Read(ctx context.Context, id string) (views.Total, error) {
	body, err := vhttp.GetURL(ctx, p.httpClient, p.viewURL(id), nil)
	if err != nil {
		return views.Total{}, toAPIError(err)
	}
	var resp views.Resp
	if err = c.JSON.Unmarshal(body, &resp); err != nil {
		return views.Total{}, fmt.Errorf("decode response fail,err:%w", err)
	}
	return resp.Total, nil
}

func toAPIError(err error) error {
	var statusErr *vhttp.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	apiErr := &APIError{StatusCode: statusErr.StatusCode, Msg: statusErr.Status}
	var errResp views.ErrorResp
	if c.JSON.Unmarshal(statusErr.Body, &errResp) == nil && errResp.Error != "" {
		apiErr.Msg = errResp.Error
	}
	return apiErr
}
