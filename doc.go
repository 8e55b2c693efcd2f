// Copyright 2017 Santhosh Kumar Tekuri. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonschema compiles json-schema documents (draft-04 through
// 2020-12) into an executable graph and validates json instances against
// that graph.
//
// A schema is compiled once:
//
//	c := jsonschema.NewCompiler()
//	schemas, idx, err := c.Compile("file:///path/to/schema.json")
//
// and the resulting [Schemas] value can be used to validate any number of
// instances concurrently:
//
//	err := schemas.Validate(instance, idx)
//
// Schema documents are loaded through loaders registered by URL scheme;
// nothing is fetched over the network unless a loader for that scheme has
// been registered with [Compiler.RegisterURLLoader].
package jsonschema
