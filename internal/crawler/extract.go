package crawler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/01moynul/koodos-golang/internal/seo"
)

// MaxPreviewLength caps the stored readable text of a page.
const MaxPreviewLength = 2000

// extracted is everything the crawler keeps from one HTML document.
type extracted struct {
	Title           string
	MetaDescription string
	H1Count         int
	Preview         string
	Links           []string
}

// extract parses body. Relative links resolve against pageURL, and only links
// on host are kept.
func extract(body []byte, pageURL *url.URL, host string) (*extracted, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := &extracted{
		Title:           collapseSpace(doc.Find("title").First().Text()),
		MetaDescription: collapseSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", "")),
		H1Count:         doc.Find("h1").Length(),
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, ok := resolveLink(pageURL, host, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		out.Links = append(out.Links, link)
	})

	out.Preview = readableText(body, pageURL)
	if out.Preview == "" {
		out.Preview = collapseSpace(doc.Find("body").Text())
	}
	out.Preview = seo.Truncate(out.Preview, MaxPreviewLength)

	return out, nil
}

// readableText returns the main article text, or "" when readability finds none.
func readableText(body []byte, pageURL *url.URL) string {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err != nil || article.Content == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return collapseSpace(doc.Text())
}

// resolveLink makes href absolute against base and keeps it only when it is
// an http(s) link on host. base may differ from host after a redirect.
func resolveLink(base *url.URL, host, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(abs.Host, host) {
		return "", false
	}
	return canonical(abs), true
}

// canonical drops the fragment and query so one page maps to one row.
func canonical(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.RawQuery = ""
	c.ForceQuery = false
	c.Host = strings.ToLower(c.Host)
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
