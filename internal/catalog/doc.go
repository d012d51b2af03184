// Package catalog provides an HTTP client for the collection site's adoptable
// guide and comparison pages.
//
// # Overview
//
// The guide is the remote catalog the filter pipeline asks two questions of:
//
//   - ListTags: every tag name linked from /adoptable_guide.php
//   - ListIDsForTag: every item id linked from /adoptable_guide.php?tag=<name>
//
// The comparison page (/compare_collections.php?compareto=<id>) is fetched
// through the same client so all traffic shares one rate limiter, cookie and
// user agent. Parsing of that page lives in the compare package.
//
// # Page Parsing
//
// Pages are parsed with golang.org/x/net/html. Links are resolved against the
// page URL before matching, so relative and absolute hrefs behave the same:
//
//   - a tag link is any <a> whose path ends in /adoptable_guide.php and whose
//     query has a "tag" parameter; the tag name is the link text
//   - an item link is any <a> whose path ends in /adoptable_guide.php and whose
//     "id" parameter is numeric
//
// Guide pages link each item more than once (thumbnail and name), so ids are
// de-duplicated keeping the first occurrence.
//
// # Error Handling
//
// Every failure is wrapped with ErrFetch so callers can test for it with
// errors.Is:
//
//   - "catalog fetch failed: execute request: dial tcp: connection refused"
//   - "catalog fetch failed: /adoptable_guide.php returned status 503"
//   - "catalog fetch failed: no tags found on /adoptable_guide.php"
//
// A tag page without item links is an empty selection and returns an empty
// slice with a nil error.
//
// # Politeness
//
// Requests go through a golang.org/x/time/rate limiter (2 requests per second
// by default, burst 1) and an http.Client timeout (15 seconds by default). The
// client never retries; the caller decides what to do with a failure.
package catalog
