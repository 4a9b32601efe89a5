// Package order loads order documents from the abstract file storage.  A
// document location can use any afs scheme (file://, embed://, mem:// ...)
// and may embed ${env.KEY} expressions which are expanded before decoding.
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/viant/fulfillment/model"
)

// Service loads order documents.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates an order document loader; baseURL may be empty for absolute
// locations.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// document mirrors the accepted order JSON shapes: items either top level or
// wrapped in an orderDetails envelope.
type document struct {
	ID           string       `json:"id"`
	Items        []model.Item `json:"items"`
	OrderDetails *struct {
		Items []model.Item `json:"items"`
	} `json:"orderDetails,omitempty"`
}

// Load reads, expands and decodes an order document.
func (s *Service) Load(ctx context.Context, location string) (*model.Order, error) {
	URL := location
	if s.baseURL != "" && !strings.Contains(location, "://") {
		URL = url.Join(s.baseURL, location)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load order document %v: %w", URL, err)
	}
	expanded := expandEnvExpr(string(data))
	var doc document
	if err = json.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode order document %v: %w", URL, err)
	}
	ret := &model.Order{ID: doc.ID, Items: doc.Items}
	if doc.OrderDetails != nil {
		ret.Items = doc.OrderDetails.Items
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// expandEnvExpr replaces all occurrences of ${env.KEY} in the input with the
// value of the environment variable KEY (or "" if unset).
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		valid := true
		for _, r := range key {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				valid = false
				break
			}
		}
		if !valid {
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}
		b.WriteString(os.Getenv(key))
		i = startKey + endKey + 1
	}
	return b.String()
}
