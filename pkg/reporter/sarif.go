package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/armakit/armakit/pkg/config"
	"github.com/armakit/armakit/pkg/diag"
	"github.com/armakit/armakit/pkg/runner"
	"github.com/armakit/armakit/pkg/source"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes one diagnostic code.
type SARIFRule struct {
	ID               string               `json:"id"`
	ShortDescription SARIFMultiformatText `json:"shortDescription,omitempty"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
	Properties       map[string]any       `json:"properties,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFResult represents a single diagnostic result.
type SARIFResult struct {
	RuleID           string          `json:"ruleId"`
	Level            string          `json:"level"`
	Message          SARIFMessage    `json:"message"`
	Locations        []SARIFLocation `json:"locations"`
	RelatedLocations []SARIFLocation `json:"relatedLocations,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
	Message          *SARIFMessage         `json:"message,omitempty"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion describes the affected text region.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFReporter formats results as SARIF.
type SARIFReporter struct {
	opts Options
	out  io.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		out:  opts.Writer,
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.out)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	return len(output.Runs[0].Results), nil
}

func (r *SARIFReporter) buildOutput(result *runner.Result) *SARIFOutput {
	output := &SARIFOutput{
		Schema:  sarifSchemaURI,
		Version: sarifVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{
				Driver: SARIFDriver{
					Name:           "armakit",
					Version:        "0.1.0",
					InformationURI: "https://github.com/armakit/armakit",
					Rules:          make([]SARIFRule, 0),
				},
			},
			Results: make([]SARIFResult, 0),
		}},
	}

	if result == nil {
		return output
	}

	// Track codes we've already added as rules
	rulesSeen := make(map[diag.Code]bool)

	for _, entry := range result.Entries {
		if entry.Result == nil {
			continue
		}

		for _, d := range entry.Result.Diagnostics {
			// Add rule if not already seen
			if !rulesSeen[d.Code] {
				rule := SARIFRule{
					ID: string(d.Code),
					ShortDescription: SARIFMultiformatText{
						Text: d.Message,
					},
					DefaultConfig: &SARIFRuleConfig{
						Level: severityToSARIFLevel(d.Severity),
					},
				}
				output.Runs[0].Tool.Driver.Rules = append(output.Runs[0].Tool.Driver.Rules, rule)
				rulesSeen[d.Code] = true
			}

			sarifResult := SARIFResult{
				RuleID: string(d.Code),
				Level:  severityToSARIFLevel(d.Severity),
				Message: SARIFMessage{
					Text: d.Message,
				},
				Locations: []SARIFLocation{r.location(d.Loc, nil)},
			}

			// Expansion chain frames and related locations become SARIF
			// related locations with describing messages.
			if d.Chain != nil {
				for _, frame := range d.Chain.Frames() {
					msg := &SARIFMessage{Text: "expanded from macro " + frame.Macro}
					sarifResult.RelatedLocations = append(sarifResult.RelatedLocations,
						r.location(frame.Site, msg))
				}
			}
			for _, rel := range d.Related {
				msg := &SARIFMessage{Text: rel.Message}
				sarifResult.RelatedLocations = append(sarifResult.RelatedLocations,
					r.location(rel.Loc, msg))
			}

			output.Runs[0].Results = append(output.Runs[0].Results, sarifResult)
		}
	}

	return output
}

// location converts a source location to a SARIF location.
func (r *SARIFReporter) location(loc source.Location, msg *SARIFMessage) SARIFLocation {
	sl := SARIFLocation{Message: msg}
	if !loc.IsValid() {
		return sl
	}
	line, col := loc.Position()
	sl.PhysicalLocation = SARIFPhysicalLocation{
		ArtifactLocation: SARIFArtifactLocation{
			URI: config.FormatPath(r.opts.PathFormat, loc.File.Layer, loc.File.Path),
		},
		Region: SARIFRegion{
			StartLine:   line,
			StartColumn: col,
		},
	}
	return sl
}

// severityToSARIFLevel converts diagnostic severity to SARIF level.
func severityToSARIFLevel(severity diag.Severity) string {
	switch severity {
	case diag.SeverityError:
		return "error"
	case diag.SeverityWarning:
		return "warning"
	case diag.SeverityNote:
		return "note"
	default:
		return "warning"
	}
}
