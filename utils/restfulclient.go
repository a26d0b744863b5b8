package utils

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type RestfulClient struct {
	client  *http.Client
	host    string
	version string
}

func NewRestfulClient(host string, version string) *RestfulClient {
	httpClient := &http.Client{
		Timeout: time.Second * 60,
	}

	return &RestfulClient{
		client:  httpClient,
		host:    host,
		version: strings.Trim(version, "/"),
	}
}

func (r *RestfulClient) endpoint(link string) string {
	link = strings.TrimLeft(link, "/")
	if r.version == "" && link == "" {
		return r.host
	}
	parts := []string{strings.TrimRight(r.host, "/")}
	if r.version != "" {
		parts = append(parts, r.version)
	}
	if link != "" {
		parts = append(parts, link)
	}
	return strings.Join(parts, "/")
}

func (r *RestfulClient) Get(
	ctx context.Context,
	link string,
	header map[string]string,
	queryString map[string]string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint(link), nil)
	if err != nil {
		return nil, Permanent(err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range header {
		req.Header.Add(key, value)
	}

	if len(queryString) > 0 {
		q := url.Values{}
		for key, value := range queryString {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return r.do(req)
}

// Post sends body as application/json.
func (r *RestfulClient) Post(ctx context.Context, link string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint(link), bytes.NewReader(body))
	if err != nil {
		return nil, Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.do(req)
}

func (r *RestfulClient) do(req *http.Request) ([]byte, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "RestfulClient: error sending request to server")
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "RestfulClient: error reading body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("RestfulClient: %s %s error, status: %s, body: %s",
			req.Method, req.URL.String(), resp.Status, string(respBody))
	}

	return respBody, nil
}
