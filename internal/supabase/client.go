// Package supabase 实现对托管数据后端的 REST 适配器：
// PostgREST 表操作、GoTrue 令牌校验和存储桶上传。
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client 是全应用共享的后端客户端句柄
type Client struct {
	baseURL    string
	serviceKey string
	jwtSecret  string
	httpClient *http.Client
}

// Config 客户端配置
type Config struct {
	URL        string
	ServiceKey string
	JWTSecret  string
	HTTPClient *http.Client
}

// New 创建后端客户端
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL 不能为空")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase service key 不能为空")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		jwtSecret:  cfg.JWTSecret,
		httpClient: httpClient,
	}, nil
}

// From 为指定表启动一个查询构造器
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{client: c, table: table}
}

// QueryBuilder 构造 PostgREST 查询
type QueryBuilder struct {
	client  *Client
	table   string
	columns string
	filters []string
	orders  []string
	limit   int
	offset  int
	single  bool
	count   bool
	upsert  bool
}

// Select 指定返回列（支持嵌入资源语法）
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq 添加等值过滤
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=eq.%v", column, value))
	return q
}

// Gte 添加大于等于过滤
func (q *QueryBuilder) Gte(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=gte.%v", column, value))
	return q
}

// Lte 添加小于等于过滤
func (q *QueryBuilder) Lte(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=lte.%v", column, value))
	return q
}

// Is 添加 IS 过滤（null / true / false）
func (q *QueryBuilder) Is(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=is.%v", column, value))
	return q
}

// In 添加 IN 过滤
func (q *QueryBuilder) In(column string, values []string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=in.(%s)", column, strings.Join(values, ",")))
	return q
}

// Or 添加 or=(...) 组合过滤，expr 使用 PostgREST 原生语法
func (q *QueryBuilder) Or(expr string) *QueryBuilder {
	q.filters = append(q.filters, "or="+expr)
	return q
}

// ILike 添加大小写不敏感的模糊匹配
func (q *QueryBuilder) ILike(column, pattern string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=ilike.%s", column, pattern))
	return q
}

// Order 添加排序
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, fmt.Sprintf("%s.%s", column, dir))
	return q
}

// Limit 设置返回条数上限
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Offset 设置偏移量
func (q *QueryBuilder) Offset(n int) *QueryBuilder {
	q.offset = n
	return q
}

// Single 期望恰好一条结果
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// Count 要求响应头携带精确总数
func (q *QueryBuilder) Count() *QueryBuilder {
	q.count = true
	return q
}

// Upsert 插入时忽略唯一键冲突
func (q *QueryBuilder) Upsert() *QueryBuilder {
	q.upsert = true
	return q
}

func (q *QueryBuilder) buildURL() string {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)

	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		parts := strings.SplitN(f, "=", 2)
		if len(parts) == 2 {
			params.Add(parts[0], parts[1])
		}
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		params.Set("offset", strconv.Itoa(q.offset))
	}

	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// Execute 执行 SELECT 查询
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.buildURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	q.client.setHeaders(req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	if q.count {
		req.Header.Set("Prefer", "count=exact")
	}

	return q.client.do(req)
}

// Insert 执行 INSERT，返回写入后的行
func (q *QueryBuilder) Insert(ctx context.Context, data any) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.buildURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	prefer := "return=representation"
	if q.upsert {
		prefer = "resolution=ignore-duplicates," + prefer
	}
	req.Header.Set("Prefer", prefer)

	return q.client.do(req)
}

// Update 执行 PATCH，作用范围由已加过滤条件决定，返回受影响的行
func (q *QueryBuilder) Update(ctx context.Context, data any) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, q.buildURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	return q.client.do(req)
}

// Delete 执行 DELETE，作用范围由已加过滤条件决定，返回被删除的行
func (q *QueryBuilder) Delete(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, q.buildURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	q.client.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	return q.client.do(req)
}

// RPC 调用数据库存储过程
func (c *Client) RPC(ctx context.Context, fn string, params any) (*Response, error) {
	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)

	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("序列化参数失败: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	c.setHeaders(req)
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

// Response PostgREST 响应
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// JSON 将响应体反序列化到 v
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Err 若响应表示失败则返回错误
func (r *Response) Err() error {
	if r.StatusCode < 400 {
		return nil
	}
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		if errResp.Message != "" {
			return fmt.Errorf("后端错误: %s (status %d)", errResp.Message, r.StatusCode)
		}
		if errResp.Error != "" {
			return fmt.Errorf("后端错误: %s (status %d)", errResp.Error, r.StatusCode)
		}
	}
	return fmt.Errorf("后端错误: status %d", r.StatusCode)
}

// Total 从 Content-Range 头解析精确总数，需配合 Count() 使用
func (r *Response) Total() int {
	// 形如 "0-9/57" 或 "*/0"
	cr := r.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0
	}
	total, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0
	}
	return total
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求后端失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}
