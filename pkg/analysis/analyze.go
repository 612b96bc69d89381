package analysis

import (
	"cmp"
	"slices"
	"time"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// analysisContext holds temporary state during analysis.
type analysisContext struct {
	codeMap   map[string]*CodeAnalysis
	fileMap   map[string]*FileAnalysis
	codeFiles map[string]map[string]bool
	fileCodes map[string]map[string]bool
}

// newAnalysisContext creates a new analysis context.
func newAnalysisContext() *analysisContext {
	return &analysisContext{
		codeMap:   make(map[string]*CodeAnalysis),
		fileMap:   make(map[string]*FileAnalysis),
		codeFiles: make(map[string]map[string]bool),
		fileCodes: make(map[string]map[string]bool),
	}
}

// incrementSeverityCounts updates counts based on severity.
func incrementSeverityCounts(severity diag.Severity, totals *Totals, fa *FileAnalysis) {
	switch severity {
	case diag.SeverityError:
		totals.Errors++
		fa.Errors++
	case diag.SeverityWarning:
		totals.Warnings++
		fa.Warnings++
	case diag.SeverityNote:
		totals.Notes++
		fa.Notes++
	}
}

// incrementCodeSeverity updates code analysis severity counts.
func incrementCodeSeverity(severity diag.Severity, ca *CodeAnalysis) {
	switch severity {
	case diag.SeverityError:
		ca.Errors++
	case diag.SeverityWarning:
		ca.Warnings++
	case diag.SeverityNote:
		ca.Notes++
	}
}

// getOrCreateFileAnalysis returns existing or creates new FileAnalysis.
func (ctx *analysisContext) getOrCreateFileAnalysis(path, layer string) *FileAnalysis {
	if _, ok := ctx.fileMap[path]; !ok {
		ctx.fileMap[path] = &FileAnalysis{Path: path, Layer: layer}
		ctx.fileCodes[path] = make(map[string]bool)
	}
	return ctx.fileMap[path]
}

// getOrCreateCodeAnalysis returns existing or creates new CodeAnalysis.
func (ctx *analysisContext) getOrCreateCodeAnalysis(code string) *CodeAnalysis {
	if _, ok := ctx.codeMap[code]; !ok {
		ctx.codeMap[code] = &CodeAnalysis{Code: code}
		ctx.codeFiles[code] = make(map[string]bool)
	}
	return ctx.codeMap[code]
}

// createDiagnosticEntry builds a DiagnosticEntry from a collected diagnostic.
func createDiagnosticEntry(entryPath string, d *diag.Diagnostic, pathFormat config.PathFormat) DiagnosticEntry {
	entry := DiagnosticEntry{
		Entry:    entryPath,
		Code:     string(d.Code),
		Severity: string(d.Severity),
		Message:  d.Message,
	}
	if d.Loc.IsValid() {
		entry.FilePath = config.FormatPath(pathFormat, d.Loc.File.Layer, d.Loc.File.Path)
		entry.Layer = d.Loc.File.Layer
		entry.Line, entry.Column = d.Loc.Position()
	}
	if d.Chain != nil {
		for _, frame := range d.Chain.Frames() {
			ce := ChainEntry{Macro: frame.Macro}
			if frame.Site.IsValid() {
				ce.FilePath = config.FormatPath(pathFormat, frame.Site.File.Layer, frame.Site.File.Path)
				ce.Line, ce.Column = frame.Site.Position()
			}
			entry.Chain = append(entry.Chain, ce)
		}
	}
	for _, rel := range d.Related {
		re := RelatedEntry{Message: rel.Message}
		if rel.Loc.IsValid() {
			re.FilePath = config.FormatPath(pathFormat, rel.Loc.File.Layer, rel.Loc.File.Path)
			re.Line, re.Column = rel.Loc.Position()
		}
		entry.Related = append(entry.Related, re)
	}
	return entry
}

// buildByCode constructs the ByCode slice from accumulated data.
func (ctx *analysisContext) buildByCode(opts Options) []CodeAnalysis {
	result := make([]CodeAnalysis, 0, len(ctx.codeMap))
	for code, ca := range ctx.codeMap {
		for f := range ctx.codeFiles[code] {
			ca.Files = append(ca.Files, f)
		}
		slices.Sort(ca.Files)
		result = append(result, *ca)
	}
	sortCodeAnalysis(result, opts.SortBy, opts.SortDesc)
	return result
}

// buildByFile constructs the ByFile slice from accumulated data.
func (ctx *analysisContext) buildByFile(opts Options) []FileAnalysis {
	var result []FileAnalysis
	for path, fa := range ctx.fileMap {
		if fa.Issues == 0 {
			continue
		}
		for c := range ctx.fileCodes[path] {
			fa.Codes = append(fa.Codes, c)
		}
		slices.Sort(fa.Codes)
		result = append(result, *fa)
	}
	sortFileAnalysis(result, opts.SortBy, opts.SortDesc)
	return result
}

// Analyze transforms a runner.Result into a Report.
// It performs a single pass through diagnostics to compute all views.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}

	if result == nil {
		return report
	}

	ctx := newAnalysisContext()
	report.Totals.FilesRead = result.Stats.FilesRead

	for _, outcome := range result.Entries {
		report.Totals.Entries++
		if outcome.Error != nil {
			report.Totals.EntriesErrored++
			continue
		}
		if outcome.Result == nil {
			continue
		}
		if len(outcome.Result.Diagnostics) > 0 {
			report.Totals.EntriesWithIssues++
		}

		for _, d := range outcome.Result.Diagnostics {
			report.Totals.Issues++

			path, layer := outcome.Path, ""
			if d.Loc.IsValid() {
				layer = d.Loc.File.Layer
				path = config.FormatPath(opts.PathFormat, layer, d.Loc.File.Path)
			}
			fa := ctx.getOrCreateFileAnalysis(path, layer)

			incrementSeverityCounts(d.Severity, &report.Totals, fa)

			fa.Issues++
			ctx.fileCodes[path][string(d.Code)] = true

			ca := ctx.getOrCreateCodeAnalysis(string(d.Code))
			ca.Issues++
			incrementCodeSeverity(d.Severity, ca)
			ctx.codeFiles[string(d.Code)][path] = true

			if opts.IncludeDiagnostics {
				report.Diagnostics = append(report.Diagnostics, createDiagnosticEntry(outcome.Path, d, opts.PathFormat))
			}
		}
	}

	if opts.IncludeByCode {
		report.ByCode = ctx.buildByCode(opts)
	}
	if opts.IncludeByFile {
		report.ByFile = ctx.buildByFile(opts)
	}

	return report
}

func sortCodeAnalysis(codes []CodeAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(codes, func(left, right CodeAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Code, right.Code)
		case SortBySeverity:
			// Errors first, then warnings, then notes (always descending by severity)
			result := cmp.Compare(right.Errors, left.Errors)
			if result == 0 {
				result = cmp.Compare(right.Warnings, left.Warnings)
			}
			if result == 0 {
				result = cmp.Compare(right.Issues, left.Issues)
			}
			return result
		default: // SortByCount
			result := cmp.Compare(left.Issues, right.Issues)
			if desc {
				result = -result
			}
			return result
		}
	})
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(files, func(left, right FileAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Path, right.Path)
		case SortBySeverity:
			// Errors first, then warnings, then notes (always descending by severity)
			result := cmp.Compare(right.Errors, left.Errors)
			if result == 0 {
				result = cmp.Compare(right.Warnings, left.Warnings)
			}
			if result == 0 {
				result = cmp.Compare(right.Issues, left.Issues)
			}
			return result
		default: // SortByCount
			result := cmp.Compare(left.Issues, right.Issues)
			if desc {
				result = -result
			}
			return result
		}
	})
}
