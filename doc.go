// Package ploog is the Composition Root for the ploog static site generator.
//
// It connects the regeneration pipeline (pkg/core) with its adapters: the
// filesystem source and output adapters, the TOML front matter parser, the
// goldmark renderer, the watcher and the preview/console HTTP server.
//
// A regeneration pass locates every source, loads it, splits off its front
// matter, renders the Markdown body into a fixed HTML shell and writes one
// page per source. All sources are parsed and rendered before anything is
// written, so a bad source leaves the previous output untouched.
//
// Front matter is a TOML block between two "---" lines:
//
//	---
//	title = 'Hello world.'
//	slug = 'hello'
//	---
//	# Hello
//
// Without it, title and slug are both the file name without its extension.
//
// Usage:
//
//	err := ploog.Run(ctx, ploog.Config{
//		SourcePath: "posts",
//		OutputPath: "public",
//		Watch:      true,
//	}, ploog.WithLogger(logger))
package ploog
