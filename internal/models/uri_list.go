package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// uriSeparator joins image URIs in the image_uris column.
const uriSeparator = ";"

// URIList is an ordered list of absolute URIs stored as a single ";"-joined text column.
type URIList []string

// ParseURIList splits a stored value, dropping empty segments. Every segment must be an absolute URI.
func ParseURIList(s string) (URIList, error) {
	list := URIList{}
	for _, segment := range strings.Split(s, uriSeparator) {
		if segment == "" {
			continue
		}
		if err := validateURI(segment); err != nil {
			return nil, err
		}
		list = append(list, segment)
	}
	return list, nil
}

func (l URIList) String() string {
	return strings.Join(l, uriSeparator)
}

// Value implements driver.Valuer. An empty list is stored as "".
func (l URIList) Value() (driver.Value, error) {
	for _, u := range l {
		if err := validateURI(u); err != nil {
			return nil, err
		}
		if strings.Contains(u, uriSeparator) {
			return nil, fmt.Errorf("image uri %q contains the list separator", u)
		}
	}
	return l.String(), nil
}

// Scan implements sql.Scanner.
func (l *URIList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*l = URIList{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into URIList", value)
	}

	parsed, err := ParseURIList(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalJSON renders a nil list as [] rather than null.
func (l URIList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func validateURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image uri %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("invalid image uri %q: not absolute", raw)
	}
	return nil
}
