// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package httploader implements loader.Loader for http/https urls.
//
// Importing the package registers nothing; a caller wires it into a
// Compiler explicitly:
//
//	c := jsonschema.NewCompiler()
//	c.RegisterURLLoader("http", httploader.New(nil))
//	c.RegisterURLLoader("https", httploader.New(nil))
package httploader

import (
	"fmt"
	"net/http"

	"github.com/brightloom/jsonschema/loader"
)

// Loader fetches schema documents over http/https using an injected
// *http.Client, defaulting to http.DefaultClient when nil is passed to New.
type Loader struct {
	client *http.Client
}

// New returns a loader.Loader backed by client, or http.DefaultClient if
// client is nil.
func New(client *http.Client) loader.Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return Loader{client: client}
}

func (l Loader) Load(url string) (any, error) {
	resp, err := l.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status code %d", url, resp.StatusCode)
	}
	return loader.UnmarshalJSON(resp.Body)
}
