package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// New make a new  http Request
func New(url string) *Request {
	return &Request{
		url:     url,
		headers: http.Header{},
		ctx:     context.Background(),
	}
}

// ResponseError return new  error response
func ResponseError(code int, message string) *Response {
	return &Response{
		Code:    code,
		Status:  code,
		Message: message,
		Headers: http.Header{},
		Data:    nil,
	}
}

// AddHeader set the request header
func (r *Request) AddHeader(name, value string) *Request {
	r.headers.Add(name, value)
	return r
}

// SetHeader set the request header
func (r *Request) SetHeader(name string, value string) *Request {
	r.headers.Set(name, value)
	return r
}

// HasHeader check if the header name is exists
func (r *Request) HasHeader(name string) bool {
	return r.headers.Get(name) != ""
}

// WithContext bind the request to ctx
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx != nil {
		r.ctx = ctx
	}
	return r
}

// Post send the POST request
func (r *Request) Post(data interface{}) *Response {
	if !r.HasHeader("Content-Type") {
		r.AddHeader("Content-Type", "application/json; charset=utf-8")
	}
	return r.Send("POST", data)
}

// Send  send the request
func (r *Request) Send(method string, data interface{}) *Response {

	var body []byte
	if data != nil {
		r.data = data
	}

	if method != "GET" && method != "HEAD" && r.data != nil {
		var res *Response
		body, res = r.body()
		if res != nil {
			return res
		}
	}


	req, err := http.NewRequestWithContext(r.ctx, method, r.url, bytes.NewBuffer(body))
	if err != nil {
		return ResponseError(0, fmt.Sprintf("http.NewRequest: %s", err.Error()))
	}
	req.Header = r.headers

	tr := &http.Transport{Proxy: proxy}
	defer tr.CloseIdleConnections()
	client := &http.Client{Transport: tr}

	resp, err := client.Do(req)
	if err != nil {
		return ResponseError(0, err.Error())
	}
	defer resp.Body.Close()

	res := &Response{
		Status:  resp.StatusCode,
		Data:    nil,
		Code:    resp.StatusCode,
		Headers: resp.Header,
	}

	if method == "HEAD" {
		return res
	}

	rBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ResponseError(resp.StatusCode, err.Error())
	}

	if len(rBody) == 0 {
		return res
	}
	res.Data = rBody

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var rData interface{}
		err = jsoniter.Unmarshal(rBody, &rData)
		if err != nil {
			return ResponseError(resp.StatusCode, err.Error())
		}
		res.Data = rData

		if value, ok := rData.(map[string]interface{}); ok {
			if v, ok := value["message"].(string); ok {
				res.Message = v
			} else if e, ok := value["error"].(map[string]interface{}); ok {
				if v, ok := e["message"].(string); ok {
					res.Message = v
				}
			}
		}
	}

	return res
}

// body
func (r *Request) body() ([]byte, *Response) {
	switch data := r.data.(type) {
	case []byte:
		return data, nil
	case string:
		return []byte(data), nil
	}

	body, err := jsoniter.Marshal(r.data)
	if err != nil {
		return nil, ResponseError(0, err.Error())
	}
	return body, nil
}

func proxy(req *http.Request) (*neturl.URL, error) {
	var value string
	if req.URL.Scheme == "https" {
		value = getenv("HTTPS_PROXY", "https_proxy")
	} else {
		value = getenv("HTTP_PROXY", "http_proxy")
	}
	if value == "" {
		return nil, nil
	}
	return neturl.Parse(value)
}

func getenv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
