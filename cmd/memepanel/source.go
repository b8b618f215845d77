package main

import (
	"errors"
	"flag"
	"path/filepath"

	"github.com/example/memepanel/internal/catalog"
	"github.com/example/memepanel/internal/imagesource"
)

var errManySources = errors.New("only one of -file, -url and -template may be given")

// sourceFlags selects the base image of edit and render.
type sourceFlags struct {
	file     string
	url      string
	template string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.file, "file", "", "base image file")
	fs.StringVar(&s.url, "url", "", "base image http(s) or data: URL")
	fs.StringVar(&s.template, "template", "", "base image from the template catalog")
}

func (s *sourceFlags) count() int {
	n := 0
	for _, v := range []string{s.file, s.url, s.template} {
		if v != "" {
			n++
		}
	}
	return n
}

// selection resolves the flags. A zero Selection keeps the stored image.
// The template is returned when one was picked.
func (s *sourceFlags) selection(load func() (*catalog.Catalog, error)) (imagesource.Selection, *catalog.Template, error) {
	switch {
	case s.count() > 1:
		return imagesource.Selection{}, nil, errManySources
	case s.file != "":
		return imagesource.Selection{URL: s.file, Title: filepath.Base(s.file)}, nil, nil
	case s.url != "":
		return imagesource.Selection{URL: s.url, Title: s.url}, nil, nil
	case s.template != "":
		cat, err := load()
		if err != nil {
			return imagesource.Selection{}, nil, err
		}
		t, err := cat.Lookup(s.template)
		if err != nil {
			return imagesource.Selection{}, nil, err
		}
		return imagesource.Selection{URL: t.URL, Title: t.Title}, &t, nil
	}
	return imagesource.Selection{}, nil, nil
}
