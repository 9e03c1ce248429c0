// Package formdata reads per-form settings from an XML document of the shape
//
//	<forms>
//	  <form name="main">
//	    <info name="title" type="string">Asteroids</info>
//	  </form>
//	</forms>
//
// Form and info names are matched case-insensitively. When a name repeats,
// the first occurrence wins.
package formdata

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrFormNotFound = errors.New("form not found")
	ErrInfoNotFound = errors.New("info not found")
	ErrClosed       = errors.New("form data reader is closed")
)

type Info struct {
	Name string
	// Type is the lower-cased type attribute. It is informational only.
	Type  string
	Value string
}

func (i Info) Int() (int, error) {
	return strconv.Atoi(i.Value)
}

func (i Info) Float() (float64, error) {
	return strconv.ParseFloat(i.Value, 64)
}

func (i Info) Bool() (bool, error) {
	return strconv.ParseBool(i.Value)
}

type Form struct {
	name  string
	infos []Info
	index map[string]int
}

func (f *Form) Name() string {
	return f.name
}

func (f *Form) Info(name string) (Info, error) {
	i, ok := f.index[strings.ToLower(name)]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q in form %q", ErrInfoNotFound, name, f.name)
	}
	return f.infos[i], nil
}

// Infos returns the entries in document order.
func (f *Form) Infos() []Info {
	return append([]Info(nil), f.infos...)
}

type Reader struct {
	mtx    sync.Mutex
	forms  map[string]*Form
	closed bool
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

func Parse(src io.Reader) (*Reader, error) {
	r := &Reader{forms: map[string]*Form{}}
	dec := xml.NewDecoder(src)

	var form *Form
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "form":
				form = nil
				name := attr(t, "name")
				key := strings.ToLower(name)
				if name == "" || r.forms[key] != nil {
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				form = &Form{name: name, index: map[string]int{}}
				r.forms[key] = form

			case "info":
				if form == nil {
					if err := dec.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				var value string
				if err := dec.DecodeElement(&value, &t); err != nil {
					return nil, err
				}
				name := attr(t, "name")
				key := strings.ToLower(name)
				if _, dup := form.index[key]; name == "" || dup {
					continue
				}
				form.index[key] = len(form.infos)
				form.infos = append(form.infos, Info{
					Name:  name,
					Type:  strings.ToLower(attr(t, "type")),
					Value: strings.TrimSpace(value),
				})
			}

		case xml.EndElement:
			if t.Name.Local == "form" {
				form = nil
			}
		}
	}
	return r, nil
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (r *Reader) Form(name string) (*Form, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	f, ok := r.forms[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormNotFound, name)
	}
	return f, nil
}

// Lookup is Form followed by Form.Info.
func (r *Reader) Lookup(form, info string) (Info, error) {
	f, err := r.Form(form)
	if err != nil {
		return Info{}, err
	}
	return f.Info(info)
}

// Close releases the parsed forms. Closing twice returns ErrClosed.
func (r *Reader) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.forms = nil
	return nil
}
