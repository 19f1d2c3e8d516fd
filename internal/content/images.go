// Package content inspects article bodies.
package content

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ExtractImageURIs returns the absolute http(s) sources of the <img> elements
// in body, in document order and without duplicates. Bodies that are plain
// text simply yield no images.
func ExtractImageURIs(body string) []string {
	uris := make([]string, 0)
	if !strings.Contains(body, "<") {
		return uris
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return uris
	}

	seen := make(map[string]bool)
	goquery.NewDocumentFromNode(root).Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists {
			return
		}
		src = strings.TrimSpace(src)
		if !usableImageURI(src) || seen[src] {
			return
		}
		seen[src] = true
		uris = append(uris, src)
	})

	return uris
}

// usableImageURI rejects relative references and anything containing ';',
// which is the separator of the stored image list.
func usableImageURI(src string) bool {
	if src == "" || strings.Contains(src, ";") {
		return false
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
