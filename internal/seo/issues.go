package seo

import (
	"fmt"
	"unicode/utf8"

	"github.com/01moynul/koodos-golang/internal/models"
)

const (
	IssueMissingTitle = "missing_title"
	IssueTitleTooLong = "title_too_long"
	IssueMissingMeta  = "missing_meta"
	IssueMetaTooShort = "meta_too_short"
	IssueMetaTooLong  = "meta_too_long"
	IssueMissingH1    = "missing_h1"
	IssueMultipleH1   = "multiple_h1"
	IssueHTTPError    = "http_error"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	maxTitleLength = 60
	minMetaLength  = 50
)

// PageSnapshot is what the crawler saw on one fetch of a page.
type PageSnapshot struct {
	URL             string
	Title           string
	MetaDescription string
	H1Count         int
	StatusCode      int
}

// DetectIssues lists the on-page problems in s. An HTTP error hides every
// other check since the body is not the real page.
func DetectIssues(s PageSnapshot) []models.SeoIssue {
	if s.StatusCode >= 400 {
		return []models.SeoIssue{issue(IssueHTTPError, SeverityHigh, fmt.Sprintf("page responded with HTTP %d", s.StatusCode))}
	}

	var issues []models.SeoIssue

	titleLen := utf8.RuneCountInString(s.Title)
	switch {
	case titleLen == 0:
		issues = append(issues, issue(IssueMissingTitle, SeverityHigh, "page has no <title>"))
	case titleLen > maxTitleLength:
		issues = append(issues, issue(IssueTitleTooLong, SeverityLow,
			fmt.Sprintf("title is %d characters; search results show about %d", titleLen, maxTitleLength)))
	}

	metaLen := utf8.RuneCountInString(s.MetaDescription)
	switch {
	case metaLen == 0:
		issues = append(issues, issue(IssueMissingMeta, SeverityMedium, "page has no meta description"))
	case metaLen < minMetaLength:
		issues = append(issues, issue(IssueMetaTooShort, SeverityLow,
			fmt.Sprintf("meta description is %d characters; aim for %d-%d", metaLen, IdealMetaMin, MaxMetaLength)))
	case metaLen > MaxMetaLength:
		issues = append(issues, issue(IssueMetaTooLong, SeverityLow,
			fmt.Sprintf("meta description is %d characters and will be cut at %d", metaLen, MaxMetaLength)))
	}

	switch {
	case s.H1Count == 0:
		issues = append(issues, issue(IssueMissingH1, SeverityMedium, "page has no <h1>"))
	case s.H1Count > 1:
		issues = append(issues, issue(IssueMultipleH1, SeverityLow, fmt.Sprintf("page has %d <h1> elements", s.H1Count)))
	}

	return issues
}

func issue(kind, severity, message string) models.SeoIssue {
	return models.SeoIssue{Kind: kind, Severity: severity, Message: message}
}
