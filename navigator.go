package main

import (
	"net/url"
	"path"
	"strings"
)

// ViewMode is the state the navigator lands in for a location
type ViewMode int

const (
	ModeRootListing ViewMode = iota
	ModeFolderListing
	ModeGroupedFileListing
	ModeReportView
	ModeRawFileView
)

func (m ViewMode) String() string {
	switch m {
	case ModeRootListing:
		return "root-listing"
	case ModeFolderListing:
		return "folder-listing"
	case ModeGroupedFileListing:
		return "grouped-file-listing"
	case ModeReportView:
		return "report-view"
	case ModeRawFileView:
		return "raw-file-view"
	}
	return "unknown"
}

// reportSourceExtensions are tried in order when a report route is resolved
var reportSourceExtensions = []string{".xlsx", ".xlsm", ".csv"}

// NavOptions configure Navigate
type NavOptions struct {
	ReportSuffixes []string
}

// Route is the outcome of one navigation
type Route struct {
	Mode    ViewMode
	Path    []string
	Subtree Tree
	// Key is the object to fetch in report and raw file views
	Key string
	// Found is false when a report or raw file view points at a missing key
	Found bool
}

// SplitPath turns a location path into navigation segments.
// The leading and a single trailing empty segment are dropped.
func SplitPath(location string) []string {
	location = strings.TrimPrefix(location, "/")
	if location == "" {
		return []string{}
	}

	segments := strings.Split(location, "/")
	if len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}

	for i, segment := range segments {
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segments[i] = unescaped
		}
	}
	return segments
}

// LocationOf is the inverse of SplitPath
func LocationOf(segments []string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return "/" + strings.Join(escaped, "/")
}

// Navigate decides the view for path from the tree shape alone
func Navigate(root Tree, segments []string, opts NavOptions) Route {
	if len(segments) == 0 {
		return Route{Mode: ModeRootListing, Path: segments, Subtree: root, Found: true}
	}

	node, isFile, found := Lookup(root, segments)
	switch {
	case found && !isFile:
		mode := ModeFolderListing
		if len(node) > 0 && len(node.Folders()) == 0 {
			mode = ModeGroupedFileListing
		}
		return Route{Mode: mode, Path: segments, Subtree: node, Found: true}
	case found && isFile:
		return Route{Mode: ModeRawFileView, Path: segments, Subtree: Tree{}, Key: KeyPath(segments), Found: true}
	}

	last := segments[len(segments)-1]
	if HasExtension(last) {
		return Route{Mode: ModeRawFileView, Path: segments, Subtree: Tree{}, Key: KeyPath(segments)}
	}

	if IsReportName(last, opts.ReportSuffixes) {
		parentPath := segments[:len(segments)-1]
		parent := Resolve(root, parentPath)

		route := Route{Mode: ModeReportView, Path: segments, Subtree: Tree{}}
		for _, ext := range reportSourceExtensions {
			if parent.HasFile(last + ext) {
				route.Key = KeyPath(append(append([]string{}, parentPath...), last+ext))
				route.Found = true
				return route
			}
		}
		route.Key = KeyPath(append(append([]string{}, parentPath...), last+reportSourceExtensions[0]))
		return route
	}

	return Route{Mode: ModeFolderListing, Path: segments, Subtree: Tree{}}
}

// HasExtension reports whether a segment looks like a file name with an extension
func HasExtension(name string) bool {
	ext := path.Ext(name)
	return len(ext) > 1 && len(ext) < len(name)
}

// IsReportName reports whether an extension-less segment names a report
func IsReportName(name string, suffixes []string) bool {
	if HasExtension(name) {
		return false
	}
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix != "" && strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// FileAction is how a file is presented, chosen by extension
type FileAction int

const (
	ActionInline FileAction = iota
	ActionEmbed
	ActionImage
	ActionDownload
)

func (a FileAction) String() string {
	switch a {
	case ActionEmbed:
		return "embed"
	case ActionImage:
		return "image"
	case ActionDownload:
		return "download"
	}
	return "inline"
}

// ActionFor dispatches purely on the file extension
func ActionFor(name string) FileAction {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return ActionEmbed
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
		return ActionImage
	case ".xlsx", ".xls", ".xlsm", ".csv", ".zip", ".gz", ".tgz", ".tar", ".7z", ".pdf":
		return ActionDownload
	}
	return ActionInline
}

// ReportSegment is the route segment that opens file as a report, or "" when
// the file cannot be shown as one under the configured suffixes.
func ReportSegment(file string, suffixes []string) string {
	if !IsGridSource(file) {
		return ""
	}
	stem := strings.TrimSuffix(file, path.Ext(file))
	if !IsReportName(stem, suffixes) {
		return ""
	}
	return stem
}
