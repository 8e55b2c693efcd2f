package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brightloom/jsonschema/loader"
)

func newLoader(mappings map[string]string, insecure bool, cacert string) (loader.Loader, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	if cacert != "" {
		pem, err := os.ReadFile(cacert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(pem)
		client.Transport = &http.Transport{TLSClientConfig: &tls.Config{RootCAs: pool}}
	} else if insecure {
		client.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &jvLoader{
		mappings: mappings,
		file:     fileLoader{},
		http:     &httpLoader{client: client},
	}, nil
}

// jvLoader applies -ns directory mappings before falling back to
// file:// and http(s):// loading, and understands .yaml/.yml in addition
// to JSON at every level.
type jvLoader struct {
	mappings map[string]string
	file     loader.Loader
	http     loader.Loader
}

func (l *jvLoader) Load(url string) (any, error) {
	for prefix, dir := range l.mappings {
		if suffix, ok := strings.CutPrefix(url, prefix); ok {
			return loadFile(filepath.Join(dir, suffix))
		}
	}
	switch {
	case strings.HasPrefix(url, "file://"):
		return l.file.Load(url)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return l.http.Load(url)
	default:
		return loadFile(url)
	}
}

func loadFile(path string) (any, error) {
	path = strings.TrimPrefix(path, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		var v any
		err := yaml.NewDecoder(f).Decode(&v)
		return v, err
	}
	return loader.UnmarshalJSON(f)
}

type fileLoader struct{}

func (fileLoader) Load(url string) (any, error) {
	return loadFile(url)
}

type httpLoader struct {
	client *http.Client
}

func (l *httpLoader) Load(url string) (any, error) {
	resp, err := l.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}

	isYAML := strings.HasSuffix(url, ".yaml") || strings.HasSuffix(url, ".yml")
	if !isYAML {
		ctype := resp.Header.Get("Content-Type")
		isYAML = strings.HasSuffix(ctype, "/yaml") || strings.HasSuffix(ctype, "-yaml")
	}
	if isYAML {
		var v any
		err := yaml.NewDecoder(resp.Body).Decode(&v)
		return v, err
	}
	return loader.UnmarshalJSON(resp.Body)
}
