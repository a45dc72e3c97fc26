package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	c "github.com/d0ngw/viewcount/common"
)

// StatusError 非200的http响应
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Status:%d,msg:%s", e.StatusCode, e.Status)
}

// RenderJSON 渲染JSON
func RenderJSON(w http.ResponseWriter, jsonData interface{}) {
	RenderJSONStatus(w, http.StatusOK, jsonData)
}

// RenderJSONStatus 使用status渲染JSON
func RenderJSONStatus(w http.ResponseWriter, status int, jsonData interface{}) {
	data, err := c.JSON.Marshal(jsonData)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// RenderError 渲染{"error":msg}
func RenderError(w http.ResponseWriter, status int, msg string) {
	RenderJSONStatus(w, status, map[string]string{"error": msg})
}

// RenderText 渲染Text
func RenderText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// GetURL 请求URL,非200的响应返回*StatusError
func GetURL(ctx context.Context, client *http.Client, url string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		url = url + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	body, _, err := doRequest(client, req)
	return body, err
}

// PostURL 请求URL,requestBody为nil时以表单的形式提交params,否则params作为查询参数
func PostURL(ctx context.Context, client *http.Client, url string, params url.Values, contentType string, requestBody []byte) ([]byte, http.Header, error) {
	var reader io.Reader
	if requestBody == nil {
		reader = strings.NewReader(params.Encode())
		if contentType == "" {
			contentType = "application/x-www-form-urlencoded"
		}
	} else {
		reader = bytes.NewReader(requestBody)
		if len(params) > 0 {
			url = url + "?" + params.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return doRequest(client, req)
}

func doRequest(client *http.Client, req *http.Request) ([]byte, http.Header, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.Header, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	}
	return body, resp.Header, nil
}
