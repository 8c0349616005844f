// Package source loads the output of the external vCard parser. The parser
// owns the wire format; its output is one JSON document per source file with
// the contacts already broken into typed fields. This package only assigns
// stable source names and indices.
package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nfc18/contactplus/internal/model"
)

// document is the parser's per-source output shape.
type document struct {
	Source   string `json:"source"`
	Contacts []struct {
		DisplayName  string           `json:"display_name"`
		Name         model.NameParts  `json:"name"`
		Emails       []model.Email    `json:"emails"`
		Phones       []model.Phone    `json:"phones"`
		Organization string           `json:"organization"`
		Notes        string           `json:"notes"`
		Photo        *model.Photo     `json:"photo"`
		Raw          []model.RawField `json:"raw"`
	} `json:"contacts"`
}

// Load reads one parsed source file into ordered records. The source name
// comes from the document, falling back to the file's base name. A file that
// cannot be read or decoded is an input-boundary error.
func Load(path string) ([]model.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "source: decode %s", path)
	}

	name := doc.Source
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	records := make([]model.SourceRecord, 0, len(doc.Contacts))
	for i, c := range doc.Contacts {
		records = append(records, model.SourceRecord{
			SourceName:   name,
			SourceIndex:  i,
			DisplayName:  c.DisplayName,
			Name:         c.Name,
			Emails:       c.Emails,
			Phones:       c.Phones,
			Organization: c.Organization,
			Notes:        c.Notes,
			Photo:        c.Photo,
			Raw:          c.Raw,
		})
	}

	zap.L().Info("source: loaded",
		zap.String("source", name),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// LoadDir loads every *.json file in dir, in lexical filename order so a
// directory always produces the same record sequence.
func LoadDir(dir string) ([]model.SourceRecord, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "source: read dir %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, nil, eris.Errorf("source: no parsed source files in %s", dir)
	}

	var all []model.SourceRecord
	var names []string
	for _, p := range paths {
		recs, err := Load(p)
		if err != nil {
			return nil, nil, err
		}
		if len(recs) > 0 {
			names = append(names, recs[0].SourceName)
		}
		all = append(all, recs...)
	}
	return all, names, nil
}
