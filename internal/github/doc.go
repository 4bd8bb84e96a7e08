// Package github provides a minimal GitHub REST API client for scanning pull
// requests and reporting findings back to them.
//
// PRSource lists the added and modified files of a pull request and fetches
// their content at the PR head ref. Findings are published as an issue
// comment or, optionally, as a review with inline comments.
package github
