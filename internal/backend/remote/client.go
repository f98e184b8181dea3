// Package remote implements translator.Backend over HTTP against a
// model-serving sidecar that hosts the pretrained-model library. The sidecar
// keeps loaded tokenizers and models in memory and hands out opaque handles.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mtbench/internal/translator"
)

// Options configures a Client.
type Options struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	Logger         *zerolog.Logger
	// HTTPClient overrides the default transport (tests).
	HTTPClient *http.Client
}

// Client talks to the sidecar. It is safe for concurrent use; the handles it
// returns are not.
type Client struct {
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

var _ translator.Backend = (*Client)(nil)

// New constructs a Client.
func New(opts Options) *Client {
	cli := opts.HTTPClient
	if cli == nil {
		connect := opts.ConnectTimeout
		if connect <= 0 {
			connect = 5 * time.Second
		}
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		// Timeout stays 0: every request carries a context deadline instead.
		cli = &http.Client{Transport: tr}
	}
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = opts.Logger.With().Str("component", "remote").Logger()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		reqTimeout: opts.RequestTimeout,
		httpClient: cli,
		log:        l,
	}
}

// StatusError is returned for non-2xx sidecar responses.
type StatusError struct {
	Status int
	Path   string
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: %d %s", e.Path, e.Status, e.Msg)
}

// StatusCode lets the HTTP layer forward upstream failures as 502.
func (e *StatusError) StatusCode() int { return http.StatusBadGateway }

// IsStatus reports whether err is a sidecar status error with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

func (c *Client) do(ctx context.Context, path string, in, out any) error {
	method := http.MethodGet
	if in != nil {
		method = http.MethodPost
	}
	return c.call(ctx, method, path, in, out)
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("backend call")
	if resp.StatusCode/100 != 2 {
		return &StatusError{Status: resp.StatusCode, Path: path, Msg: readErrorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readErrorMessage extracts {"error": "..."} when present, else the raw text.
func readErrorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

// AcceleratorAvailable implements translator.Backend.
func (c *Client) AcceleratorAvailable(ctx context.Context) (bool, error) {
	var out deviceResponse
	if err := c.do(ctx, "/v1/device", nil, &out); err != nil {
		return false, err
	}
	return out.Accelerator, nil
}

// LoadTokenizer implements translator.Backend.
func (c *Client) LoadTokenizer(ctx context.Context, modelID, srcLang, tgtLang string) (translator.Tokenizer, error) {
	var out tokenizerResponse
	in := tokenizerRequest{Model: modelID, SrcLang: srcLang, TgtLang: tgtLang}
	if err := c.do(ctx, "/v1/tokenizers", in, &out); err != nil {
		return nil, err
	}
	if out.Handle == "" {
		return nil, fmt.Errorf("backend returned empty tokenizer handle for %s", modelID)
	}
	return &tokenizer{c: c, handle: out.Handle, table: out.LangCodeToID}, nil
}

// LoadModel implements translator.Backend.
func (c *Client) LoadModel(ctx context.Context, kind, modelID string, opts translator.LoadOptions) (translator.Model, error) {
	in := modelRequest{
		Model:      modelID,
		Kind:       kind,
		DType:      string(opts.DType),
		LoadIn8Bit: opts.LoadIn8Bit,
		LoadIn4Bit: opts.LoadIn4Bit,
		DeviceMap:  opts.DeviceMap,
	}
	var out modelResponse
	if err := c.do(ctx, "/v1/models", in, &out); err != nil {
		return nil, err
	}
	if out.Handle == "" {
		return nil, fmt.Errorf("backend returned empty model handle for %s", modelID)
	}
	return &model{c: c, handle: out.Handle, device: translator.Device(out.Device)}, nil
}

type tokenizer struct {
	c      *Client
	handle string
	table  map[string]int64
}

func (t *tokenizer) path(op string) string {
	return "/v1/tokenizers/" + url.PathEscape(t.handle) + "/" + op
}

func (t *tokenizer) EncodeBatch(ctx context.Context, texts []string) (translator.TokenIDs, error) {
	var out encodeResponse
	if err := t.c.do(ctx, t.path("encode"), encodeRequest{Texts: texts, Padding: true}, &out); err != nil {
		return nil, err
	}
	return out.InputIDs, nil
}

func (t *tokenizer) DecodeBatch(ctx context.Context, ids translator.TokenIDs, skipSpecial bool) ([]string, error) {
	var out decodeResponse
	if err := t.c.do(ctx, t.path("decode"), decodeRequest{IDs: ids, SkipSpecialTokens: skipSpecial}, &out); err != nil {
		return nil, err
	}
	return out.Texts, nil
}

func (t *tokenizer) LangID(ctx context.Context, code string) (int64, error) {
	var out langIDResponse
	if err := t.c.do(ctx, t.path("lang_id"), langIDRequest{Code: code}, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (t *tokenizer) LangCodeToID() map[string]int64 { return t.table }

// Close releases the tokenizer on the sidecar. A handle the sidecar no
// longer knows counts as released.
func (t *tokenizer) Close(ctx context.Context) error {
	return t.c.release(ctx, "/v1/tokenizers/"+url.PathEscape(t.handle))
}

type model struct {
	c      *Client
	handle string
	device translator.Device
}

func (m *model) path(op string) string {
	return "/v1/models/" + url.PathEscape(m.handle) + "/" + op
}

func (m *model) Device() translator.Device { return m.device }

func (m *model) To(ctx context.Context, d translator.Device) error {
	var out toResponse
	if err := m.c.do(ctx, m.path("to"), toRequest{Device: string(d)}, &out); err != nil {
		return err
	}
	m.device = d
	if out.Device != "" {
		m.device = translator.Device(out.Device)
	}
	return nil
}

func (m *model) Eval(ctx context.Context) error {
	return m.c.do(ctx, m.path("eval"), struct{}{}, nil)
}

// Close frees the weights on the sidecar.
func (m *model) Close(ctx context.Context) error {
	return m.c.release(ctx, "/v1/models/"+url.PathEscape(m.handle))
}

func (m *model) Generate(ctx context.Context, ids translator.TokenIDs, args translator.ControlArgs) (translator.TokenIDs, error) {
	in := make(map[string]any, len(args)+1)
	for k, v := range args {
		in[k] = v
	}
	in["input_ids"] = ids
	var out generateResponse
	if err := m.c.do(ctx, m.path("generate"), in, &out); err != nil {
		return nil, err
	}
	return out.OutputIDs, nil
}

func (c *Client) release(ctx context.Context, path string) error {
	err := c.call(ctx, http.MethodDelete, path, nil, nil)
	if IsStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}
